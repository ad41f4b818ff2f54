package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/CommonsSwarm/evmscripter/internal/cli"
	"github.com/CommonsSwarm/evmscripter/internal/cli/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	t.Chdir(t.TempDir())

	cmd := cli.NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "evmcl v"+cli.Version)
}

func TestHelpCommand(t *testing.T) {
	out, _, err := run(t, "", "--help")
	require.NoError(t, err)
	for _, name := range []string{"run", "parse", "repl", "modules", "serve", "version", "completion"} {
		assert.Contains(t, out, name)
	}
}

func TestParseCommand_FlagsReachConfig(t *testing.T) {
	out, _, err := run(t, "exec 0x01 \"f()\"\n", "parse", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"type": "Script"`)
}

func TestInvalidFlagValue(t *testing.T) {
	_, _, err := run(t, "", "modules", "--from", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid from address "alice"`)
}

func TestModulesCommand_Markdown(t *testing.T) {
	out, _, err := run(t, "", "modules", "-o", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "| aragonos | ar |")
}

func TestCompletionCommand(t *testing.T) {
	out, _, err := run(t, "", "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "evmcl")
}
