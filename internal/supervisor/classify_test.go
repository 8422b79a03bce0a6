package supervisor

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsProtocolLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"00:00:00", true},
		{"23:59:59 : done", true},
		{"12:30:05 : Processing file 1 of 3", true},
		{"09:05:07", true},
		{"24:00:00 : too late", false},
		{"12:60:00", false},
		{"12:00:60", false},
		{"9:05:07 : not padded", false},
		{"12-30-05", false},
		{"12:30:0", false},
		{"", false},
		{"Warning: something", false},
		{" 12:30:05", false},
		{"ab:cd:ef", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, IsProtocolLine(tt.line))
		})
	}
}

func TestIsProtocolLineExhaustiveHours(t *testing.T) {
	for h := 0; h < 30; h++ {
		text := fmt.Sprintf("%02d:15:30", h)
		assert.Equal(t, h <= 23, IsProtocolLine(text), text)
	}
}

func TestDisplayLine(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 4, 2, 0, time.Local)

	assert.Equal(t, "10:00:00 : worker says hi", DisplayLine(Stdout, "10:00:00 : worker says hi", now))
	assert.Equal(t, "08:04:02 : [ HOST MESSAGE ] : loading add-ins", DisplayLine(Stdout, "loading add-ins", now))
	assert.Equal(t, "08:04:02 : [ HOST ERROR ] : crash", DisplayLine(Stderr, "crash", now))
}

func TestStreamString(t *testing.T) {
	assert.Equal(t, "stdout", Stdout.String())
	assert.Equal(t, "stderr", Stderr.String())
}
