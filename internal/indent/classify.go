package indent

// DefaultMaxDepth is the deepest width considered for unit classification:
// six levels of four-column indentation.
const DefaultMaxDepth = 24

// pairUnit is matched on its own; 2 is never tried as a divisor.
const pairUnit = 2

// unitOrder is the order divisors are tried in. First match wins.
var unitOrder = []int{3, 4, 5}

// Units lists every unit a line can be classified under, ascending.
var Units = []int{2, 3, 4, 5}

// Classifier assigns indent widths to histogram buckets.
type Classifier struct {
	// MaxDepth bounds the widths considered for unit classification.
	MaxDepth int
}

// NewClassifier returns a Classifier. maxDepth <= 0 selects DefaultMaxDepth.
func NewClassifier(maxDepth int) Classifier {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return Classifier{MaxDepth: maxDepth}
}

// Unit returns the indentation unit for width, if any.
func (c Classifier) Unit(width int) (int, bool) {
	if width == pairUnit {
		return pairUnit, true
	}
	if width <= pairUnit || width > c.MaxDepth {
		return 0, false
	}
	for _, d := range unitOrder {
		if width%d == 0 {
			return d, true
		}
	}
	return 0, false
}

// Record counts one line of the given width in every scope.
// A zero width is ignored.
func (c Classifier) Record(width int, scopes ...*Stats) {
	if width == 0 {
		return
	}
	unit, ok := c.Unit(width)
	for _, s := range scopes {
		s.Widths.Inc(width)
		if ok {
			s.Units.Inc(unit)
		}
	}
}
