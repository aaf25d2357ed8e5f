package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xseq/lib/list"
	"github.com/benz9527/xseq/lib/xlog"
)

func runScript(t *testing.T, args []string, script string) []string {
	t.Helper()
	out := &bytes.Buffer{}
	args = append([]string{"-log-level", "error"}, args...)
	require.Equal(t, 0, run(args, strings.NewReader(script), out, &bytes.Buffer{}))
	return strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
}

func TestRun_Scenarios(t *testing.T) {
	script := `
# build [1 2 3]
append 1
append 2
append 3
get 1
len
insert 0 0
list
del 1
list
reverse
contains 2
count 2
index 3
check
`
	for _, args := range [][]string{nil, {"-doubly"}} {
		lines := runScript(t, args, script)
		require.Equal(t, []string{
			"ok", "ok", "ok",
			"2",
			"3",
			"ok",
			"[0 1 2 3]",
			"ok",
			"[0 2 3]",
			"[3 2 0]",
			"true",
			"1",
			"2",
			"ok",
		}, lines)
	}
}

func TestRun_Errors(t *testing.T) {
	lines := runScript(t, []string{"-doubly"}, `
append a
get x
get 5
get 99999999999999999999
insert 3 b
frobnicate
len 1
set
pop
pop
list
`)
	require.Len(t, lines, 11)
	require.Equal(t, "ok", lines[0])
	require.Contains(t, lines[1], list.ErrChainIndexType.Error())
	require.Contains(t, lines[2], list.ErrChainIndexOutOfRange.Error())
	require.Contains(t, lines[3], list.ErrChainIndexOutOfRange.Error())
	require.NotContains(t, lines[3], list.ErrChainIndexType.Error())
	require.Contains(t, lines[4], list.ErrChainIndexOutOfRange.Error())
	require.Contains(t, lines[5], "unknown command")
	require.Contains(t, lines[6], "wrong number of arguments")
	require.Contains(t, lines[7], "wrong number of arguments")
	require.Equal(t, "a", lines[8])
	require.Contains(t, lines[9], list.ErrChainIndexOutOfRange.Error())
	require.Equal(t, "[]", lines[10])
}

func TestInterpreter_ValuesWithSpaces(t *testing.T) {
	logger := xlog.NewXLogger(xlog.WithXLoggerLevel(xlog.LogLevelError))
	chain := list.NewSinglyLinkedChain[string](nil)
	out := &bytes.Buffer{}
	it := newInterpreter(chain, logger, out)
	require.NoError(t, it.Run(strings.NewReader("append hello world\nset 0 good  bye\nremove nope\nrepr\npop 0\nclear\nlen\n")))
	require.Equal(t, "ok\nok\nfalse\nSinglyLinkedChain([good bye])\ngood bye\nok\n0\n", out.String())
}

func TestParseConfig(t *testing.T) {
	cfg, err := parseConfig([]string{"-doubly", "-name", "demo", "-metrics", "stdout", "-log-encoder", "text", "-metrics-addr", ":9464"})
	require.NoError(t, err)
	require.Equal(t, ":9464", cfg.metricsAddr)
	require.True(t, cfg.doubly)
	require.Equal(t, "demo", cfg.name)
	require.Equal(t, "stdout", cfg.metrics)
	require.Equal(t, "text", cfg.logEncoder)

	_, err = parseConfig([]string{"-unknown"})
	require.Error(t, err)
	require.Equal(t, 2, run([]string{"-unknown"}, strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{}))

	out := &bytes.Buffer{}
	require.Equal(t, 1, run([]string{"-metrics", "statsd"}, strings.NewReader(""), out, &bytes.Buffer{}))
	require.Contains(t, out.String(), "unknown metrics exporter")
}

func TestParseIndex(t *testing.T) {
	idx, err := parseIndex("-3")
	require.NoError(t, err)
	require.Equal(t, int64(-3), idx)

	_, err = parseIndex("99999999999999999999")
	require.ErrorIs(t, err, list.ErrChainIndexOutOfRange)
	_, err = parseIndex("-99999999999999999999")
	require.ErrorIs(t, err, list.ErrChainIndexOutOfRange)
	_, err = parseIndex("1.5")
	require.ErrorIs(t, err, list.ErrChainIndexType)
}

func TestRun_LogsDoNotMixWithResults(t *testing.T) {
	out, logOut := &bytes.Buffer{}, &bytes.Buffer{}
	code := run([]string{"-log-level", "warn"}, strings.NewReader("append a\nget 5\nlen\n"), out, logOut)
	require.Equal(t, 0, code)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "ok", lines[0])
	require.True(t, strings.HasPrefix(lines[1], "error: "))
	require.Equal(t, "1", lines[2])

	entry := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(strings.SplitN(logOut.String(), "\n", 2)[0]), &entry))
	require.Equal(t, "chain operation rejected", entry["msg"])
	require.Equal(t, zapcore.WarnLevel.CapitalString(), entry["lvl"])
}

func TestRun_PrometheusMetrics(t *testing.T) {
	logOut := &bytes.Buffer{}
	lines := runScript(t, []string{"-metrics", "prometheus", "-metrics-addr", "127.0.0.1:0"}, "append 1\nlen\n")
	require.Equal(t, []string{"ok", "1"}, lines)

	out := &bytes.Buffer{}
	require.Equal(t, 1, run([]string{"-metrics", "prometheus"}, strings.NewReader(""), out, logOut))
	require.Contains(t, out.String(), "-metrics-addr")
	out.Reset()
	require.Equal(t, 1, run([]string{"-metrics-addr", "127.0.0.1:0"}, strings.NewReader(""), out, logOut))
	require.Contains(t, out.String(), "-metrics-addr")
}
