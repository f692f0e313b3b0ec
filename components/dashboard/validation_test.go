package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutChangeValidatorAcceptsValidPayload(t *testing.T) {
	validator := NewLayoutChangeValidator()
	change, err := validator.Decode([]byte(`{"entries":[{"id":"chart-trend","x":0,"y":1,"w":6,"h":4}]}`))
	require.NoError(t, err)
	assert.Equal(t, []WidgetLayoutEntry{{ID: "chart-trend", X: 0, Y: 1, W: 6, H: 4}}, change.Entries)
}

func TestLayoutChangeValidatorRejectsInvalidPayload(t *testing.T) {
	validator := NewLayoutChangeValidator()
	for _, payload := range []string{
		`{}`,
		`{"entries":{}}`,
		`{"entries":[{"id":"a","x":0,"y":0,"w":1}]}`,
		`{"entries":[{"id":"a","x":-1,"y":0,"w":1,"h":1}]}`,
		`{"entries":[{"id":"a","x":0.5,"y":0,"w":1,"h":1}]}`,
		`{"entries":[{"id":"","x":0,"y":0,"w":1,"h":1}]}`,
		`not json`,
	} {
		_, err := validator.Decode([]byte(payload))
		assert.Error(t, err, payload)
	}
}

func TestLayoutChangeValidatorCompilesOnce(t *testing.T) {
	validator := NewLayoutChangeValidator()
	_, _ = validator.Decode([]byte(`{"entries":[]}`))
	first := validator.schema
	require.NotNil(t, first)
	_, _ = validator.Decode([]byte(`{"entries":[]}`))
	assert.Same(t, first, validator.schema)
}
