package jsonutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexibleStringValue(t *testing.T) {
	tests := []struct {
		name  string
		input json.RawMessage
		want  string
	}{
		{name: "string value", input: json.RawMessage(`"3306"`), want: "3306"},
		{name: "integer value", input: json.RawMessage(`5432`), want: "5432"},
		{name: "float value", input: json.RawMessage(`3.14`), want: "3.14"},
		{name: "boolean true", input: json.RawMessage(`true`), want: "true"},
		{name: "null value", input: json.RawMessage(`null`), want: ""},
		{name: "empty raw message", input: json.RawMessage{}, want: ""},
		{name: "object falls back to raw", input: json.RawMessage(`{"a":1}`), want: `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FlexibleStringValue(tt.input))
		})
	}
}

func TestFlexString_RoundTrip(t *testing.T) {
	var payload struct {
		Port FlexString `json:"port"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"port":1433}`), &payload))
	assert.Equal(t, FlexString("1433"), payload.Port)

	require.NoError(t, json.Unmarshal([]byte(`{"port":"27017"}`), &payload))
	assert.Equal(t, "27017", payload.Port.String())

	encoded, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"port":"27017"}`, string(encoded))
}
