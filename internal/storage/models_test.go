package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "YYZ", NormalizeCode(" yyz "))
	assert.Equal(t, "AC", NormalizeCode("Ac"))
	assert.Equal(t, "", NormalizeCode("  "))
}

func TestSplitAircraft(t *testing.T) {
	assert.Equal(t, []string{}, SplitAircraft(""))
	assert.Equal(t, []string{"77W"}, SplitAircraft("77W"))
	assert.Equal(t, []string{"77W", "320", "789"}, SplitAircraft("77W 320 789"))
}

func TestJoinSplitRoundTrip(t *testing.T) {
	codes := []string{"77W", "320"}
	assert.Equal(t, codes, SplitAircraft(JoinAircraft(codes)))
}

func TestUnionAircraft(t *testing.T) {
	merged, changed := UnionAircraft([]string{"77W"}, []string{"320"})
	assert.True(t, changed)
	assert.Equal(t, []string{"77W", "320"}, merged)

	merged, changed = UnionAircraft([]string{"77W", "320"}, []string{"320", "77W"})
	assert.False(t, changed)
	assert.Equal(t, []string{"77W", "320"}, merged)

	merged, changed = UnionAircraft(nil, []string{"789"})
	assert.True(t, changed)
	assert.Equal(t, []string{"789"}, merged)

	merged, changed = UnionAircraft([]string{"77W", "77W"}, nil)
	assert.False(t, changed)
	assert.Equal(t, []string{"77W"}, merged, "existing duplicates collapse")
}
