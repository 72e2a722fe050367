package merge

import (
	stderrors "errors"
	"testing"

	"github.com/mcncl/jsonmerge/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		input    string
		expected Strategy
		wantErr  bool
	}{
		{"deep", Deep, false},
		{"Shallow", Shallow, false},
		{" REPLACE ", Replace, false},
		{"", Deep, false},
		{"overwrite", Deep, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStrategy(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, stderrors.Is(err, errors.ErrInvalidStrategy))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestStrategy_YAML(t *testing.T) {
	var cfg struct {
		Strategy Strategy `yaml:"strategy"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("strategy: shallow\n"), &cfg))
	assert.Equal(t, Shallow, cfg.Strategy)

	assert.Error(t, yaml.Unmarshal([]byte("strategy: sideways\n"), &cfg))
}

func TestParseResolution(t *testing.T) {
	tests := []struct {
		input    string
		expected Resolution
		wantErr  bool
	}{
		{"left", Left(), false},
		{"L", Left(), false},
		{"right", Right(), false},
		{`custom:"X"`, CustomValue(`"X"`), false},
		{`CUSTOM:{"a":1}`, CustomValue(`{"a":1}`), false},
		{"custom:", CustomValue(""), false},
		{"both", Resolution{}, true},
		{"", Resolution{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseResolution(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, stderrors.Is(err, errors.ErrInvalidResolution))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolution_StringRoundTrip(t *testing.T) {
	for _, r := range []Resolution{Left(), Right(), CustomValue(`[1,2]`)} {
		parsed, err := ParseResolution(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}
}
