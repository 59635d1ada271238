package indent

import "sort"

// Buckets counts occurrences per integer key (an indent width or unit).
// Counts only ever grow.
type Buckets map[int]int

// Inc adds one occurrence of key.
func (b Buckets) Inc(key int) {
	b[key]++
}

// Get returns the count for key (0 if never seen).
func (b Buckets) Get(key int) int {
	return b[key]
}

// Keys returns the recorded keys in ascending order.
func (b Buckets) Keys() []int {
	keys := make([]int, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Total returns the sum of all counts.
func (b Buckets) Total() int {
	n := 0
	for _, c := range b {
		n += c
	}
	return n
}

// Merge adds every count of other into b.
func (b Buckets) Merge(other Buckets) {
	for k, c := range other {
		b[k] += c
	}
}

// Stats is the pair of histograms kept for one scope (a file or a whole run).
type Stats struct {
	// Widths maps effective indent width to the number of lines with that width.
	Widths Buckets `json:"widths"`
	// Units maps indentation unit (2, 3, 4 or 5) to the number of lines
	// classified under it.
	Units Buckets `json:"units"`
}

// NewStats returns an empty Stats.
func NewStats() *Stats {
	return &Stats{
		Widths: make(Buckets),
		Units:  make(Buckets),
	}
}

// Merge adds other's histograms into s.
func (s *Stats) Merge(other *Stats) {
	if other == nil {
		return
	}
	s.Widths.Merge(other.Widths)
	s.Units.Merge(other.Units)
}

// Lines returns the number of indented lines recorded.
func (s *Stats) Lines() int {
	return s.Widths.Total()
}

// Dominant returns the most frequent indentation unit.
// Ties go to the smaller unit. ok is false when no unit was recorded.
func (s *Stats) Dominant() (unit int, ok bool) {
	best := 0
	for _, k := range s.Units.Keys() {
		if c := s.Units[k]; c > best {
			unit, best, ok = k, c, true
		}
	}
	return unit, ok
}
