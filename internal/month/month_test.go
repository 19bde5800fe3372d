package month

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"January", "Jan"},
		{"jan", "Jan"},
		{"  JAN  ", "Jan"},
		{"sept", "Sep"},
		{"may", "May"},
		{"1", "Jan"},
		{"01", "Jan"},
		{"12", "Dec"},
		{" 9 ", "Sep"},
		{"summer", "Summer"},
		{"13", "13"},
		{"", ""},
		{"  ", ""},
		{"été", "Été"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := make([]string, 0, len(byName)+len(byNumber))
	for k := range byName {
		inputs = append(inputs, k)
	}
	for k := range byNumber {
		inputs = append(inputs, k)
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}
