package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0 B"},
		{512, "512.0 B"},
		{1023, "1023.0 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{5.5 * 1024 * 1024 * 1024, "5.5 GB"},
		{2 * 1024 * 1024 * 1024 * 1024, "2.0 TB"},
		{3 * 1024 * 1024 * 1024 * 1024 * 1024, "3072.0 TB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.in), "FormatBytes(%v)", tt.in)
	}
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "500.0 B/s", FormatRate(500))
	assert.Equal(t, "2.0 KB/s", FormatRate(2048))
}

func TestBar(t *testing.T) {
	assert.Equal(t, "██   ", Bar(2, 5))
	assert.Equal(t, "     ", Bar(-1, 5))
	assert.Equal(t, "█████", Bar(9, 5))
	assert.Equal(t, "", Bar(3, 0))
}

func TestCenter(t *testing.T) {
	assert.Equal(t, "  ab  ", center("ab", 6))
	assert.Equal(t, " ab  ", center("ab", 5))
	assert.Equal(t, "abcdef", center("abcdef", 3))
}

func TestPushHistory(t *testing.T) {
	var h []float64
	for i := 1; i <= 5; i++ {
		h = pushHistory(h, float64(i), 3)
	}
	assert.Equal(t, []float64{3, 4, 5}, h)

	h = pushHistory(nil, 7, 3)
	assert.Equal(t, []float64{7}, h)
}
