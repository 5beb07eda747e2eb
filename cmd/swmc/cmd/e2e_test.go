package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/swmc/pkg/datadir"
)

const junctionFile = "../../../pkg/microcontroller/testdata/junction.xml"

// run executes the root command with fresh flags and returns its output
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	verbose, strict, configPath = false, false, ""
	roundtripAll, dumpFormat = false, ""

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "config.yaml")}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestCommandsE2E(t *testing.T) {
	dir := t.TempDir()
	gate := writeFile(t, dir, "gate.xml", `<mc><c id="1" x="0" y="0" type="and"/></mc>`)
	dangling := writeFile(t, t.TempDir(), "dangling.xml", `<mc><c id="1" x="0" y="0" type="not"/><w from="9" to="1"/></mc>`)
	spaced := writeFile(t, t.TempDir(), "spaced.xml", "<mc>\n<c id=\"1\" x=\"0\" y=\"0\" type=\"and\"/>  <c id=\"2\" x=\"0\" y=\"0\" type=\"not\"/>\n</mc>")
	t.Setenv(datadir.EnvDir, dir)

	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "roundtrip game file",
			args:        []string{"roundtrip", junctionFile},
			wantContain: []string{"ok   " + junctionFile},
		},
		{
			name:        "roundtrip reports a diff",
			args:        []string{"roundtrip", spaced},
			wantErr:     true,
			wantContain: []string{"DIFF " + spaced, "@@", "(emitted)"},
		},
		{
			name:        "roundtrip folder",
			args:        []string{"roundtrip", "--all"},
			wantContain: []string{"ok   " + gate},
		},
		{
			name:    "roundtrip without files",
			args:    []string{"roundtrip"},
			wantErr: true,
		},
		{
			name:        "check clean file",
			args:        []string{"check", junctionFile},
			wantContain: []string{junctionFile + ": ok"},
		},
		{
			name:        "check dangling wire",
			args:        []string{"check", dangling},
			wantErr:     true,
			wantContain: []string{"dangling endpoint", "9:0"},
		},
		{
			name:        "info summary",
			args:        []string{"info", junctionFile},
			wantContain: []string{"Name: Junction test", "Dialect: game", "Size: 2x1", "Connections: 3", "numerical_junction: 1", "1 Speed (number input, bridge 5)"},
		},
		{
			name:        "info component",
			args:        []string{"info", junctionFile, "2"},
			wantContain: []string{"Kind: clamp (Clamp)", "in1 input (number) <- 1:1"},
		},
		{
			name:    "info missing component",
			args:    []string{"info", junctionFile, "42"},
			wantErr: true,
		},
		{
			name:        "dump json",
			args:        []string{"dump", junctionFile, "-f", "json"},
			wantContain: []string{`"dialect": "game"`, `"kind": "clamp"`},
		},
		{
			name:        "dump yaml",
			args:        []string{"dump", gate, "--format", "yaml"},
			wantContain: []string{"dialect: compact", "kind: and"},
		},
		{
			name:    "dump unknown format",
			args:    []string{"dump", gate, "-f", "toml"},
			wantErr: true,
		},
		{
			name:        "find",
			args:        []string{"find"},
			wantContain: []string{dir},
		},
		{
			name:        "ls",
			args:        []string{"ls"},
			wantContain: []string{"gate.xml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := run(t, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err, output)
			}
			for _, want := range tt.wantContain {
				assert.Contains(t, output, want)
			}
		})
	}
}

func TestStrictFlag(t *testing.T) {
	path := writeFile(t, t.TempDir(), "odd.xml", `<mc flavour="x"><c id="1" x="0" y="0" type="and"/></mc>`)

	_, err := run(t, "check", path)
	assert.NoError(t, err)

	_, err = run(t, "--strict", "check", path)
	assert.Error(t, err)
}
