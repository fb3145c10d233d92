package throttle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRate(t *testing.T) {
	tests := []struct {
		in   string
		want Rate
	}{
		{"30/min", Rate{30, time.Minute}},
		{"5/s", Rate{5, time.Second}},
		{"5/sec", Rate{5, time.Second}},
		{"100/hour", Rate{100, time.Hour}},
		{"1000/day", Rate{1000, 24 * time.Hour}},
		{" 7 / m ", Rate{7, time.Minute}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRateInvalid(t *testing.T) {
	for _, in := range []string{"", "30", "abc/min", "0/min", "-1/min", "30/", "30/week"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseRate(in)
			assert.Error(t, err)
		})
	}
}
