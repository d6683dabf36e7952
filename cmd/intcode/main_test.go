package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/vmerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProgram(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.ic")
	require.NoError(t, os.WriteFile(path, []byte(text+"\n"), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeSplit(t, args...)
	return out, err
}

// executeSplit returns stdout and stderr separately.
func executeSplit(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func traceSteps(t *testing.T, r io.Reader) []map[string]any {
	t.Helper()
	var steps []map[string]any
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		var step map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &step), sc.Text())
		steps = append(steps, step)
	}
	require.NoError(t, sc.Err())
	return steps
}

func TestRunCommand(t *testing.T) {
	path := writeProgram(t, "3,9,8,9,10,9,4,9,99,-1,8")
	out, err := execute(t, "run", path, "--input", "8")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	_, err = execute(t, "run", path)
	assert.ErrorIs(t, err, vmerrors.ErrInputExhausted)

	_, err = execute(t, "run", writeProgram(t, "1,2,x"))
	assert.ErrorIs(t, err, vmerrors.ErrMalformedProgram)

	out, err = execute(t, "run", writeProgram(t, "1102,4611686018427387904,2,7,4,7,99,0"))
	require.NoError(t, err)
	assert.Equal(t, "9223372036854775808\n", out)
}

func TestRunASCII(t *testing.T) {
	path := writeProgram(t, "104,104,104,105,104,10,104,1000,99")
	out, err := execute(t, "run", "--ascii", path)
	require.NoError(t, err)
	assert.Equal(t, "hi\n1000\n", out)
}

func TestRunTrace(t *testing.T) {
	path := writeProgram(t, "1101,2,3,5,99,0")
	tracePath := filepath.Join(t.TempDir(), "trace.jsonl")
	_, err := execute(t, "run", path, "--trace", tracePath)
	require.NoError(t, err)

	f, err := os.Open(tracePath)
	require.NoError(t, err)
	defer f.Close()

	var names []string
	for _, step := range traceSteps(t, f) {
		names = append(names, step["opcodeStr"].(string))
	}
	assert.Equal(t, []string{"ADD", "HALT"}, names)
}

func TestRunTraceToStderr(t *testing.T) {
	path := writeProgram(t, "104,7,99")
	out, errOut, err := executeSplit(t, "run", path, "--trace", "-")
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)

	steps := traceSteps(t, strings.NewReader(errOut))
	require.Len(t, steps, 2)
	assert.Equal(t, "OUT", steps[0]["opcodeStr"])
	assert.Equal(t, "HALT", steps[1]["opcodeStr"])
}

func TestDisasmCommand(t *testing.T) {
	out, err := execute(t, "disasm", writeProgram(t, "1002,4,3,4,33"))
	require.NoError(t, err)
	assert.Equal(t, "00000: MUL  [4], 3, [4]\n00004: DATA 33\n", out)
}

func TestChainCommand(t *testing.T) {
	path := writeProgram(t, "3,15,3,16,1002,16,10,16,1,16,15,15,4,15,99,0,0")
	out, err := execute(t, "chain", path, "--phases", "4,3,2,1,0")
	require.NoError(t, err)
	assert.Equal(t, "43210\n", out)

	out, err = execute(t, "chain", path, "--phases", "0,1,2,3,4", "--search")
	require.NoError(t, err)
	assert.Equal(t, "43210 4,3,2,1,0\n", out)
}

func TestChainCommandMemoryLimit(t *testing.T) {
	path := writeProgram(t, "3,15,3,16,1002,16,10,16,1,16,15,15,4,15,99,0,0")
	_, err := execute(t, "chain", path, "--phases", "4,3,2,1,0", "--memory-limit", "12")
	assert.ErrorIs(t, err, vmerrors.ErrMemoryLimit)

	_, err = execute(t, "chain", path, "--phases", "0,1,2", "--search", "--memory-limit", "12")
	assert.ErrorIs(t, err, vmerrors.ErrMemoryLimit)
}

func TestChainCommandTraceFilter(t *testing.T) {
	path := writeProgram(t, "3,15,3,16,1002,16,10,16,1,16,15,15,4,15,99,0,0")
	out, errOut, err := executeSplit(t, "chain", path, "--phases", "1,0", "--trace", "-", "--trace-id", "amp-1")
	require.NoError(t, err)
	assert.Equal(t, "10\n", out)

	steps := traceSteps(t, strings.NewReader(errOut))
	require.NotEmpty(t, steps)
	for _, step := range steps {
		assert.Equal(t, "amp-1", step["id"])
	}
}

// natNode reads its address; node 0 then sends (255,7,8). Every node then loops:
// -1 is ignored, otherwise it reads x,y and replies (255, x, min(y+1, 10)).
const natNode = "3,100,1008,100,0,101,1006,101,15,104,255,104,7,104,8," +
	"3,102,1008,102,-1,103,1005,103,15,3,104,1007,104,10,105,1,104,105,104," +
	"104,255,4,102,4,104,1105,1,15"

func TestNetworkCommand(t *testing.T) {
	path := writeProgram(t, natNode)
	out, err := execute(t, "network", path, "--nodes", "5")
	require.NoError(t, err)
	assert.Equal(t, "first NAT packet: 255<-(7,8)\nfirst repeated wake: 10\n", out)

	_, err = execute(t, "network", path, "--nodes", "5", "--memory-limit", "50")
	assert.ErrorIs(t, err, vmerrors.ErrMemoryLimit)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "intcode dev ("), out)
}

type scriptedLines struct {
	lines []string
}

func (s *scriptedLines) Readline() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func TestConsole(t *testing.T) {
	// prints "?\n", reads one line, echoes its first byte and halts
	vm, err := intcode.New("104,63,104,10,3,20,4,20,104,10,104,5000,99")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runConsole(vm, &scriptedLines{lines: []string{"go"}}, &out, false))
	assert.Equal(t, "?\ng\n5000\n", out.String())
	assert.Equal(t, 2, vm.PendingInput())
}

func TestConsoleEOF(t *testing.T) {
	vm, err := intcode.New("3,0,99")
	require.NoError(t, err)
	var out bytes.Buffer
	require.NoError(t, runConsole(vm, &scriptedLines{}, &out, false))
	assert.True(t, vm.Waiting())
}

func TestCommandConfigString(t *testing.T) {
	cfg := &CommandConfig{LogLevel: "debug", Input: []int64{1, 2}}
	assert.Contains(t, cfg.String(), `"loglevel": "debug"`)
}
