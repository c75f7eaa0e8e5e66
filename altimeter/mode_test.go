package altimeter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"simulation", ModeSimulation, false},
		{"SIM", ModeSimulation, false},
		{" live ", ModeLive, false},
		{"manual", 0, true},
		{"", 0, true},
	}

	for _, tc := range tests {
		got, err := ParseMode(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestModeJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Mode Mode `json:"mode"`
	}{ModeLive})
	require.NoError(t, err)
	assert.JSONEq(t, `{"mode":"live"}`, string(b))

	var out struct {
		Mode Mode `json:"mode"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"mode":"simulation"}`), &out))
	assert.Equal(t, ModeSimulation, out.Mode)

	require.Error(t, json.Unmarshal([]byte(`{"mode":"orbit"}`), &out))

	_, err = json.Marshal(Mode(7))
	assert.Error(t, err)
	assert.Equal(t, "Mode(7)", Mode(7).String())
}
