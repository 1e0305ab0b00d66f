package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		bytes float64
		want  string
	}{
		{"zero", 0, "0.00 B"},
		{"bytes", 512, "512.00 B"},
		{"just below KB", 1023, "1023.00 B"},
		{"one KB", 1024, "1.00 KB"},
		{"one and a half KB", 1536, "1.50 KB"},
		{"one MB", 1 << 20, "1.00 MB"},
		{"one GB", 1 << 30, "1.00 GB"},
		{"one TB", 1 << 40, "1.00 TB"},
		{"one PB", math.Pow(1024, 5), "1.00 PB"},
		{"one EB", math.Pow(1024, 6), "1.00 EB"},
		{"beyond EB stays EB", math.Pow(1024, 7), "1024.00 EB"},
		{"fractional input", 0.5, "0.50 B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Size(tt.bytes))
		})
	}
}
