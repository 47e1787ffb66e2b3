package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	l, err := New("loud")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.DebugLevel))
	assert.True(t, l.Core().Enabled(zap.InfoLevel))
}

func TestNewRecordWriter_WritesBareJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.txt")
	w, err := NewRecordWriter(path)
	require.NoError(t, err)

	w.Info("", zap.String("mode", "harga_oli"), zap.Float64("tfidf_score", 0.5))
	w.Info("", zap.String("mode", "layanan"))
	require.NoError(t, w.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, map[string]any{"mode": "harga_oli", "tfidf_score": 0.5}, first)
}
