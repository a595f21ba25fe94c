package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level   string
		want    logrus.Level
		wantErr bool
	}{
		{"", logrus.InfoLevel, false},
		{"debug", logrus.DebugLevel, false},
		{"WARN", logrus.WarnLevel, false},
		{"loud", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l, err := New(tt.level, "text", &bytes.Buffer{})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, l.GetLevel())
		})
	}
}

func TestNew_InvalidFormat(t *testing.T) {
	_, err := New("info", "xml", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestWithInstance_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New("info", "json", &buf)
	require.NoError(t, err)

	l.WithInstance("web-abc123", "run-1").Info("launched")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "web-abc123", entry["instance"])
	assert.Equal(t, "run-1", entry["run"])
	assert.Equal(t, "launched", entry["msg"])
}

func TestWithComponent_Text(t *testing.T) {
	var buf bytes.Buffer
	l, err := New("debug", "text", &buf)
	require.NoError(t, err)

	l.WithComponent("multipass").Debug("running launch")
	assert.Contains(t, buf.String(), "component=multipass")
	assert.Contains(t, buf.String(), "running launch")
}

func TestInit_ReplacesDefault(t *testing.T) {
	prev := defaultLogger
	t.Cleanup(func() { defaultLogger = prev })

	var buf bytes.Buffer
	require.NoError(t, Init("warn", "text", &buf))

	WithComponent("cli").Infof("hidden")
	WithFields(Fields{"kind": "UsageError"}).Warnf("shown %d", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown 1")
	assert.Contains(t, buf.String(), "kind=UsageError")
}
