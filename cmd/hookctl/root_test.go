package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFixture creates a config with one plugin and returns its path.
func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	plugin := `
		events.attach("greet", function(e)
			local t = e:target()
			if t == nil then t = "world" end
			e:set_target("hello " .. t)
		end)
		events.attach({"greet", "halt"}, function(e) e:stop() end, events.PRIORITY_LOW)
		events.attach("fail", function() error("plugin refused") end)
	`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "greet.lua"), []byte(plugin), 0o600))

	cfg := "log_level = \"error\"\n\n[[plugins]]\nname = \"greet\"\npath = \"greet.lua\"\n"
	path := filepath.Join(dir, "hookmgr.toml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func executeCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestTriggerCmd(t *testing.T) {
	cfg := writeFixture(t)

	out, _, err := executeCommand(t, "", "--config", cfg, "trigger", "greet", "other")
	require.NoError(t, err)
	assert.Equal(t, "greet\ttarget=hello world\tstopped=true\nother\ttarget=<nil>\tstopped=false\n", out)

	out, _, err = executeCommand(t, "", "-c", cfg, "trigger", "--target", "bob", "greet")
	require.NoError(t, err)
	assert.Equal(t, "greet\ttarget=hello bob\tstopped=true\n", out)
}

func TestTriggerCmd_Errors(t *testing.T) {
	cfg := writeFixture(t)

	_, _, err := executeCommand(t, "", "--config", cfg, "trigger")
	assert.Error(t, err)

	_, _, err = executeCommand(t, "", "--config", cfg, "trigger", "fail")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plugin refused")

	_, _, err = executeCommand(t, "", "--config", filepath.Join(t.TempDir(), "missing.toml"), "trigger", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")

	_, _, err = executeCommand(t, "", "--log-level", "loud", "trigger", "x")
	assert.Error(t, err)
}

func TestListCmd(t *testing.T) {
	cfg := writeFixture(t)

	out, _, err := executeCommand(t, "", "--config", cfg, "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"EVENT", "HANDLERS"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"fail", "1"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"greet", "2"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"halt", "1"}, strings.Fields(lines[3]))

	out, _, err = executeCommand(t, "", "--config", cfg, "list", "--plugins")
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	fields := strings.Fields(lines[1])
	assert.Equal(t, []string{"greet", "loaded", "4"}, fields[:3])
}

func TestWatchCmd(t *testing.T) {
	cfg := writeFixture(t)

	input := "greet alice\n\n# comment\nhalt\nfail\nother  spaced target \n"
	out, errOut, err := executeCommand(t, input, "--config", cfg, "watch")
	require.NoError(t, err)

	assert.Equal(t,
		"greet\ttarget=hello alice\tstopped=true\n"+
			"halt\ttarget=<nil>\tstopped=true\n"+
			"other\ttarget=spaced target\tstopped=false\n",
		out)
	assert.Contains(t, errOut, "fail: ")
	assert.Contains(t, errOut, "plugin refused")
}

func TestWatchCmd_CancelWhileReading(t *testing.T) {
	cfg := writeFixture(t)

	// Nothing is ever written, so the stdin reader stays blocked.
	stdin, w := io.Pipe()
	t.Cleanup(func() { w.Close() })

	var out, errOut bytes.Buffer
	cmd := newRootCmd(stdin, &out, &errOut)
	cmd.SetArgs([]string{"--config", cfg, "watch"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not return after cancellation")
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line   string
		name   string
		target any
		ok     bool
	}{
		{"", "", nil, false},
		{"   ", "", nil, false},
		{"# note", "", nil, false},
		{"boot", "boot", nil, true},
		{"  boot  ", "boot", nil, true},
		{"user.created alice", "user.created", "alice", true},
		{"tabbed\tvalue", "tabbed", "value", true},
		{"x   a b ", "x", "a b", true},
	}

	for _, tt := range tests {
		name, target, ok := parseLine(tt.line)
		assert.Equal(t, tt.ok, ok, tt.line)
		assert.Equal(t, tt.name, name, tt.line)
		assert.Equal(t, tt.target, target, tt.line)
	}
}

func TestVersion(t *testing.T) {
	out, _, err := executeCommand(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev")
}
