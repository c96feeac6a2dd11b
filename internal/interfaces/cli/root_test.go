package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ecowarn/internal/testutil"
)

// writeConfig lays out fixture reference tables and a config file that
// points at them.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	refDir := filepath.Join(dir, "reference")
	require.NoError(t, os.MkdirAll(refDir, 0o755))
	testutil.WriteReferenceDir(t, refDir, 90)

	body := "reference:\n" +
		"  source: filesystem\n" +
		"  dir: " + refDir + "\n" +
		"  format: csv\n" +
		"metrics:\n" +
		"  enabled: false\n"
	path := filepath.Join(dir, "ecowarn.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestNewRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "ecowarn", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.Contains(t, cmd.Version, Version)

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"predict", "vocabulary", "serve", "version"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestNewRootCommand_GlobalFlags(t *testing.T) {
	pf := NewRootCommand().PersistentFlags()
	for _, name := range []string{"config", "log-level", "output", "verbose", "no-color", "timeout", "server"} {
		assert.NotNil(t, pf.Lookup(name), "flag %q", name)
	}
	assert.Equal(t, "warn", pf.Lookup("log-level").DefValue)
	assert.Equal(t, OutputText, pf.Lookup("output").DefValue)
	assert.Equal(t, "c", pf.Lookup("config").Shorthand)
}

func TestPersistentPreRun_RejectsUnknownOutput(t *testing.T) {
	_, _, err := execute(t, "--config", writeConfig(t), "-o", "xml", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestPersistentPreRun_BadConfigFile(t *testing.T) {
	_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "version")
	assert.Error(t, err)
}

func TestPersistentPreRun_BadServerURL(t *testing.T) {
	_, _, err := execute(t, "--config", writeConfig(t), "--server", "ftp://example", "version")
	assert.Error(t, err)
}

func TestGetCLIContext_Missing(t *testing.T) {
	_, err := GetCLIContext(&cobra.Command{})
	assert.Error(t, err)

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	_, err = GetCLIContext(cmd)
	assert.Error(t, err)
}

func TestPrintResult_WithoutContextFallsBackToJSON(t *testing.T) {
	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)
	require.NoError(t, PrintResult(cmd, map[string]int{"a": 1}))
	assert.JSONEq(t, `{"a":1}`, out.String())
}

func TestPrintError(t *testing.T) {
	cmd := &cobra.Command{}
	var errOut bytes.Buffer
	cmd.SetErr(&errOut)

	PrintError(cmd, nil)
	assert.Empty(t, errOut.String())

	PrintError(cmd, assert.AnError)
	assert.Equal(t, "Error: "+assert.AnError.Error()+"\n", errOut.String())
}

func TestFormatTable(t *testing.T) {
	got := FormatTable([]string{"NAME", "V"}, [][]string{{"a", "1"}, {"longer", "22"}})
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "NAME    V", lines[0])
	assert.Equal(t, "------  --", lines[1])
	assert.Equal(t, "a       1", lines[2])
	assert.Equal(t, "longer  22", lines[3])

	assert.Empty(t, FormatTable(nil, nil))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab  ", padRight("ab", 4))
	assert.Equal(t, "abcd", padRight("abcd", 2))
}

//Personal.AI order the ending
