package jsonx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToolArguments(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]any
		wantErr bool
	}{
		{
			name:  "empty input",
			input: "",
			want:  map[string]any{},
		},
		{
			name:  "whitespace only",
			input: "  \n\t ",
			want:  map[string]any{},
		},
		{
			name:  "valid json",
			input: `{"a": 1, "b": 2}`,
			want:  map[string]any{"a": float64(1), "b": float64(2)},
		},
		{
			name:  "single quotes repaired",
			input: `{'a': 1}`,
			want:  map[string]any{"a": float64(1)},
		},
		{
			name:  "single-quoted string value repaired",
			input: `{'city': 'San Francisco'}`,
			want:  map[string]any{"city": "San Francisco"},
		},
		{
			name:    "truncated json",
			input:   `{"a":1`,
			wantErr: true,
		},
		{
			name:    "bare identifier keys",
			input:   `{a:1`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseToolArguments(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedArguments)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
