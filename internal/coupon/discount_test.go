package coupon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDiscount_Percent(t *testing.T) {
	assert.Equal(t, int64(4500), ApplyDiscount(5000, TypePercent, 10))
	assert.Equal(t, int64(0), ApplyDiscount(5000, TypePercent, 100))
	// 33% off 999 rounds to the nearest cent
	assert.Equal(t, int64(669), ApplyDiscount(999, TypePercent, 33))
}

func TestApplyDiscount_FixedFloorsAtZero(t *testing.T) {
	assert.Equal(t, int64(3000), ApplyDiscount(5000, TypeFixed, 2000))
	assert.Equal(t, int64(0), ApplyDiscount(1500, TypeFixed, 2000))
}

func TestApplyDiscount_UnknownTypeLeavesTotal(t *testing.T) {
	assert.Equal(t, int64(5000), ApplyDiscount(5000, "bogus", 10))
}
