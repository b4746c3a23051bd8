package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelta(t *testing.T) {
	tests := []struct {
		name       string
		prev, curr uint64
		want       uint64
	}{
		{"normal", 10, 25, 15},
		{"equal", 7, 7, 0},
		{"reset clamps", 50, 3, 0},
		{"max", 0, ^uint64(0), ^uint64(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Delta(tt.prev, tt.curr))
		})
	}
}

func TestParseKeyValueLines(t *testing.T) {
	kv := ParseKeyValueLines([]string{
		"Name:\tbash",
		"Uid:\t1000\t1000\t1000\t1000",
		"VmSwap:\t     128 kB",
		"garbage",
	})
	assert.Equal(t, "bash", kv["Name"])
	assert.Equal(t, "1000\t1000\t1000\t1000", kv["Uid"])
	assert.Equal(t, uint64(128), ParseUint64(kv["VmSwap"]))
	assert.Len(t, kv, 3)
}

func TestParsePIDList(t *testing.T) {
	pids, err := ParsePIDList("1,22 333")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 22, 333}, pids)

	_, err = ParsePIDList("1,x")
	assert.Error(t, err)
	_, err = ParsePIDList("-4")
	assert.Error(t, err)
}

func TestDigits(t *testing.T) {
	assert.Equal(t, 1, Digits(0))
	assert.Equal(t, 1, Digits(9))
	assert.Equal(t, 2, Digits(10))
	assert.Equal(t, 7, Digits(4194304))
}
