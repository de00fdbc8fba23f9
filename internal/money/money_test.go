package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyBps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		amount Cents
		bps    int64
		want   Cents
	}{
		{"five percent of $12,000", FromDollars(12000), 500, FromDollars(600)},
		{"zero rate", FromDollars(500), 0, 0},
		{"zero amount", 0, 500, 0},
		{"rounds half up", Cents(101), 50, Cents(1)}, // 0.505 -> 1
		{"rounds down below half", Cents(99), 50, Cents(0)},
		{"full rate is identity", Cents(12345), 10000, Cents(12345)},
		{"negative amount rounds away from zero", Cents(-101), 50, Cents(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.amount.ApplyBps(tt.bps))
		})
	}
}

func TestDollarsRoundHalfUp(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(14000), FromDollars(14000).Dollars())
	assert.Equal(t, int64(10), Cents(950).Dollars())
	assert.Equal(t, int64(9), Cents(949).Dollars())
	assert.Equal(t, int64(-10), Cents(-950).Dollars())
}

func TestFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "$13,500.00", FromDollars(13500).Format())
	assert.Equal(t, "$0.05", Cents(5).Format())
	assert.Equal(t, "-$1.50", Cents(-150).Format())
}
