package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{name: "already exact", in: 10, want: 10},
		{name: "rounds up", in: 68.966, want: 68.97},
		{name: "rounds down", in: 2.301, want: 2.3},
		{name: "half rounds away from zero", in: 0.125, want: 0.13},
		{name: "negative half rounds away from zero", in: -0.125, want: -0.13},
		{name: "accumulated line total", in: 22.99 * 3, want: 68.97},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Round2(tt.in))
		})
	}
}
