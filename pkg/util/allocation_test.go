package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAllocation(t *testing.T) {
	cases := map[string]float64{
		"0.125":   0.125,
		" 12.5% ": 0.125,
		"100%":    1,
		"0":       0,
		"1":       1,
		"40 %":    0.4,
	}
	for in, want := range cases {
		got, err := ParseAllocation(in)
		require.NoError(t, err, in)
		assert.InDelta(t, want, got, 1e-12, in)
	}
}

func TestParseAllocationRejects(t *testing.T) {
	for _, in := range []string{"", "12.3", "-0.1", "150%", "abc", "NaN"} {
		_, err := ParseAllocation(in)
		assert.Error(t, err, in)
	}
}

func TestSplitListNilOnEmpty(t *testing.T) {
	assert.Equal(t, []string{"SPY", "TLT"}, SplitList(" spy, ,TLT "))
	assert.Nil(t, SplitList(""))
}
