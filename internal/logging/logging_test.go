package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/kasbook/internal/logging"
)

func TestNewWithWriter(t *testing.T) {
	type testCase struct {
		name    string
		level   string
		format  string
		wantErr bool
	}

	tests := []testCase{
		{name: "Text", level: "info", format: "text"},
		{name: "JSON", level: "debug", format: "json"},
		{name: "DefaultFormat", level: "warn", format: ""},
		{name: "BadLevel", level: "loud", format: "text", wantErr: true},
		{name: "BadFormat", level: "info", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := logging.NewWithWriter(&bytes.Buffer{}, tt.level, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.level, log.GetLevel().String())
		})
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer

	log, err := logging.NewWithWriter(&buf, "info", "json")
	require.NoError(t, err)

	logging.Component(log, "syncer").WithField(logging.FieldCount, 3).Info("drained")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "syncer", entry[logging.FieldComponent])
	assert.EqualValues(t, 3, entry[logging.FieldCount])
	assert.Equal(t, logrus.InfoLevel.String(), entry["level"])
}
