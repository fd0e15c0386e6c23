package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univhr/hrcore/internal/logger"
)

func TestInit(t *testing.T) {
	testCases := []struct {
		name         string
		cfg          logger.Log
		expectOutput bool
		expectJSON   bool
	}{
		{
			name:         "no writer enabled",
			cfg:          logger.Log{ServiceName: "test", AppName: "test"},
			expectOutput: false,
		},
		{
			name: "console json info",
			cfg: logger.Log{
				LogLevel:    "info",
				ServiceName: "test",
				AppName:     "test",
				Console:     logger.Console{Enabled: true},
			},
			expectOutput: true,
			expectJSON:   true,
		},
		{
			name: "console writer trace",
			cfg: logger.Log{
				LogLevel:    "trace",
				ServiceName: "test",
				AppName:     "test",
				Console:     logger.Console{Enabled: true, UseConsoleWriter: true},
			},
			expectOutput: true,
		},
		{
			name: "console json trace with caller",
			cfg: logger.Log{
				LogLevel:     "trace",
				ServiceName:  "test",
				AppName:      "test",
				ReportCaller: true,
				Console:      logger.Console{Enabled: true},
			},
			expectOutput: true,
			expectJSON:   true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := captureOutput(t, tc.cfg)

			if !tc.expectOutput {
				assert.Empty(t, out)
				return
			}

			require.NotEmpty(t, out)

			if tc.expectJSON {
				for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
					var decoded map[string]any
					require.NoError(t, json.Unmarshal([]byte(line), &decoded), "line %q", line)
					assert.Equal(t, "test", decoded["app"])
				}
			}
		})
	}
}

func TestInitErrors(t *testing.T) {
	require.Error(t, logger.Init(logger.Log{LogLevel: "loud", ServiceName: "a", AppName: "a"}))
	require.ErrorIs(t, logger.Init(logger.Log{LogLevel: "info", AppName: "a"}), logger.ErrServiceNameIsEmpty)
	require.ErrorIs(t, logger.Init(logger.Log{LogLevel: "info", ServiceName: "a"}), logger.ErrAppNameIsEmpty)
}

func TestLevelWriterSplitsByLevel(t *testing.T) {
	var errBuf, infoBuf, traceBuf, warnBuf bytes.Buffer

	lw := &logger.LevelWriter{
		ErrorWriter: &errBuf,
		InfoWriter:  &infoBuf,
		TraceWriter: &traceBuf,
		WarnWriter:  &warnBuf,
	}

	for level, msg := range map[zerolog.Level]string{
		zerolog.ErrorLevel: "e",
		zerolog.InfoLevel:  "i",
		zerolog.DebugLevel: "d",
		zerolog.TraceLevel: "t",
		zerolog.WarnLevel:  "w",
	} {
		_, err := lw.WriteLevel(level, []byte(msg))
		require.NoError(t, err)
	}

	n, err := lw.WriteLevel(zerolog.Disabled, []byte("x"))
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.Equal(t, "e", errBuf.String())
	assert.ElementsMatch(t, []byte("id"), infoBuf.Bytes())
	assert.Equal(t, "t", traceBuf.String())
	assert.Equal(t, "w", warnBuf.String())
}

func TestRollingFile(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, logger.Init(logger.Log{
		LogLevel:    "info",
		ServiceName: "test",
		AppName:     "test",
		File: logger.LogFile{
			Enabled:  true,
			Path:     dir,
			ErrorLog: "error.log",
			InfoLog:  "info.log",
			TraceLog: "trace.log",
			WarnLog:  "warn.log",
		},
	}))

	log.Error().Msg("to error file")
	log.Info().Msg("to info file")

	errContent, err := os.ReadFile(dir + "/error.log")
	require.NoError(t, err)
	assert.Contains(t, string(errContent), "to error file")

	infoContent, err := os.ReadFile(dir + "/info.log")
	require.NoError(t, err)
	assert.Contains(t, string(infoContent), "to info file")
	assert.NotContains(t, string(infoContent), "to error file")
}

func captureOutput(t *testing.T, cfg logger.Log) string {
	t.Helper()

	stdout, stderr := os.Stdout, os.Stderr

	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = w
	os.Stderr = w

	require.NoError(t, logger.Init(cfg))

	log.Info().Msg("info message")
	log.Error().Err(errors.New("a test error")).Msg("error message") //nolint:goerr113
	log.Trace().Msg("trace message")

	outC := make(chan string)

	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	_ = w.Close()
	os.Stdout = stdout
	os.Stderr = stderr

	return <-outC
}
