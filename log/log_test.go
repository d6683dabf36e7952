package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withBuffer(t *testing.T, lvl string) *bytes.Buffer {
	t.Helper()
	prev := Root()
	t.Cleanup(func() { SetDefault(prev) })

	level, err := ParseLevel(lvl)
	require.NoError(t, err)
	buf := new(bytes.Buffer)
	SetDefault(NewLogger(NewTerminalHandlerWithLevel(buf, level, false)))
	return buf
}

func TestTerminalHandlerFormat(t *testing.T) {
	buf := withBuffer(t, "info")

	Info(VMMonitoring, "halted", "id", "amp-0", "ip", 42)
	assert.Equal(t, "INFO |vm_mod|halted id=amp-0 ip=42\n", buf.String())
}

func TestModuleFiltering(t *testing.T) {
	buf := withBuffer(t, "trace")
	DisableModule(ClusterMonitoring)
	t.Cleanup(func() { DisableModule(ClusterMonitoring) })

	Debug(ClusterMonitoring, "suppressed")
	assert.Empty(t, buf.String())

	EnableModules("cluster_mod, ")
	Debug(ClusterMonitoring, "routed", "dest", 3)
	assert.True(t, strings.HasPrefix(buf.String(), "DEBUG|cluster_mod|routed"))
}

func TestLevelFiltering(t *testing.T) {
	buf := withBuffer(t, "warn")

	Info(VMMonitoring, "dropped")
	Warn(VMMonitoring, "kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"trace", "DEBUG", "info", "warning", "error", "crit", "max"} {
		_, err := ParseLevel(name)
		assert.NoError(t, err, name)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestWithAttrs(t *testing.T) {
	buf := withBuffer(t, "info")

	New("node", 7).Info(ClusterMonitoring, "idle")
	assert.Equal(t, "INFO |cluster_mod|idle node=7\n", buf.String())
}
