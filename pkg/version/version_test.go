package version

import (
	"encoding/json"
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBuild replaces the embedded build info and the ldflags variables for
// the duration of a test.
func stubBuild(t *testing.T, bi *debug.BuildInfo, ok bool) {
	t.Helper()
	oldRead, oldVersion, oldCommit, oldDate := readBuildInfo, Version, Commit, Date
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, ok }
	Version, Commit, Date = "dev", "unknown", "unknown"
	t.Cleanup(func() {
		readBuildInfo, Version, Commit, Date = oldRead, oldVersion, oldCommit, oldDate
	})
}

func TestGetInfo_Defaults(t *testing.T) {
	// Given: no ldflags and no embedded build info
	stubBuild(t, nil, false)

	// When: reading build info
	info := GetInfo()

	// Then: defaults plus the runtime platform are reported
	assert.Equal(t, "dev", info.Version)
	assert.Equal(t, "unknown", info.Commit)
	assert.Equal(t, "unknown", info.Date)
	assert.Equal(t, runtime.GOOS, info.OS)
	assert.Equal(t, runtime.GOARCH, info.Arch)
	assert.Equal(t, runtime.Version(), info.GoVersion)
}

func TestGetInfo_FallsBackToVCSStamp(t *testing.T) {
	// Given: embedded VCS settings and a module version
	stubBuild(t, &debug.BuildInfo{
		Main: debug.Module{Version: "v1.2.3"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}, true)

	// When: reading build info
	info := GetInfo()

	// Then: the stamp fills the unset fields
	assert.Equal(t, "v1.2.3", info.Version)
	assert.Equal(t, "0123456789ab", info.Commit)
	assert.Equal(t, "2026-01-02T03:04:05Z", info.Date)
	assert.True(t, info.Modified)
	assert.Equal(t, "indentstat v1.2.3 (commit: 0123456789ab+dirty, built: 2026-01-02T03:04:05Z, go: "+runtime.Version()+")", String())
}

func TestGetInfo_LdflagsWin(t *testing.T) {
	stubBuild(t, &debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "ffff"}},
	}, true)
	Version, Commit, Date = "0.3.0", "abc1234", "2026-10-01"

	info := GetInfo()

	assert.Equal(t, "0.3.0", info.Version)
	assert.Equal(t, "abc1234", info.Commit)
	assert.Equal(t, "2026-10-01", info.Date)
	assert.Equal(t, "0.3.0", Short())
}

func TestGetInfo_DevelModuleVersionIgnored(t *testing.T) {
	stubBuild(t, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true)

	assert.Equal(t, "dev", Short())
}

func TestBuildInfo_JSON(t *testing.T) {
	stubBuild(t, nil, false)

	data, err := json.Marshal(GetInfo())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, key := range []string{"version", "commit", "date", "go_version", "os", "arch"} {
		assert.Contains(t, decoded, key)
	}
	assert.NotContains(t, decoded, "modified")
}
