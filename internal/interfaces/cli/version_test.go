package cli

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_Text(t *testing.T) {
	out, _, err := execute(t, "--config", writeConfig(t), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ecowarn "+Version)
	assert.Contains(t, out, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestVersionCmd_JSONUsesBuildVariables(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = "1.2.3", "abc123", "2026-01-01"
	defer func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate }()

	out, _, err := execute(t, "--config", writeConfig(t), "-o", "json", "version")
	require.NoError(t, err)

	var info VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "abc123", info.Commit)
	assert.Equal(t, "2026-01-01", info.BuildDate)
	assert.Equal(t, runtime.Version(), info.GoVersion)
}

func TestServeCmd_Flags(t *testing.T) {
	cmd := NewServeCmd()
	for _, name := range []string{"port", "reference-dir", "watch"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag %q", name)
	}
	assert.Equal(t, "p", cmd.Flags().Lookup("port").Shorthand)
}

func TestServeCmd_InvalidPortFails(t *testing.T) {
	_, _, err := execute(t, "--config", writeConfig(t), "serve", "--port", "70000")
	assert.Error(t, err)
}

//Personal.AI order the ending
