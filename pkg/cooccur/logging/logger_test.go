package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogRunJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, slog.LevelInfo).WithRun("r1")

	l.LogRun(context.Background(), RunStats{Rows: 5, Items: 4, Pairs: 3, Elapsed: time.Millisecond}, nil)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "indicator run completed", rec["msg"])
	assert.Equal(t, "r1", rec["run"])
	assert.Equal(t, float64(3), rec["pairs"])
}

func TestLogRunError(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf, slog.LevelInfo)
	l.LogRun(context.Background(), RunStats{}, errors.New("boom"))
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "boom")
}

func TestLevelsAndNoop(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf, slog.LevelWarn)
	l.LogSave(context.Background(), "runs.db", nil)
	assert.Empty(t, buf.String())

	assert.NotNil(t, OrNoop(nil))
	assert.Same(t, l, OrNoop(l))
	NoopLogger().Error("dropped")
}
