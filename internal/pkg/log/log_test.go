package log

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestFromString(t *testing.T) {
	tests := []struct {
		level    string
		expected logrus.Level
	}{
		{"", logrus.InfoLevel},
		{"info", logrus.InfoLevel},
		{"debug", logrus.DebugLevel},
		{" DEBUG ", logrus.DebugLevel},
		{"trace", logrus.TraceLevel},
		{"warn", logrus.WarnLevel},
		{"warning", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"verbose", logrus.InfoLevel},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, FromString(test.level), "FromString(%q)", test.level)
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	previous := Current
	defer func() { Current = previous }()

	Current = logrus.New()
	Current.SetOutput(&buf)
	Current.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})
	SetLogLevel(FromString(DebugLevel))

	DebugWithFields("emulating delete", Fields{"ns": "db.coll"})

	assert.True(t, IsDebug())
	assert.Contains(t, buf.String(), "emulating delete")
	assert.Contains(t, buf.String(), "ns=db.coll")
}
