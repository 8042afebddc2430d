package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelAndJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New("warn", WithOutput(buf))

	assert.Equal(t, logrus.WarnLevel, log.GetLevel())

	log.Info("hidden")
	log.WithField("report_id", "r1").Warn("visible")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "visible", entry["msg"])
	assert.Equal(t, "r1", entry["report_id"])
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	log := New("loud", WithOutput(&bytes.Buffer{}))
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}
