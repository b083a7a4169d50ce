package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/require"
)

func fakeBuildInfo(settings ...debug.BuildSetting) func() (*debug.BuildInfo, bool) {
	return func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Settings: settings}, true
	}
}

func noBuildInfo() (*debug.BuildInfo, bool) {
	return nil, false
}

func TestResolve_ReleaseMetadataWins(t *testing.T) {
	t.Parallel()
	info := resolve("1.2.0", "abcdef0123", "2026-01-02", fakeBuildInfo(debug.BuildSetting{Key: "vcs.revision", Value: "ffff"}))
	require.Equal(t, "abcdef0123", info.Commit)
	require.Equal(t, "1.2.0-gabcdef0", info.String())
}

func TestResolve_DevelopmentBuild(t *testing.T) {
	t.Parallel()
	info := resolve("1.2.0", "unknown", "unknown", fakeBuildInfo(
		debug.BuildSetting{Key: "vcs.revision", Value: "0123456789abcdef"},
		debug.BuildSetting{Key: "vcs.time", Value: "2026-10-01T10:00:00Z"},
		debug.BuildSetting{Key: "vcs.modified", Value: "true"},
	))
	require.Equal(t, "2026-10-01T10:00:00Z", info.Date)
	require.Equal(t, "1.2.0-g0123456-dirty", info.String())
}

func TestResolve_NoBuildInfo(t *testing.T) {
	t.Parallel()
	info := resolve("1.2.0", "unknown", "unknown", noBuildInfo)
	require.Equal(t, "1.2.0", info.String())
}

func TestResolve_EmptyBaseFallsBackToZero(t *testing.T) {
	t.Parallel()
	info := resolve("", "unknown", "unknown", noBuildInfo)
	require.Equal(t, "0.0.0", info.String())
}
