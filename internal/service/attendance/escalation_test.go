package attendance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDeductionDays(t *testing.T) {
	tests := []struct {
		marks int
		want  decimal.Decimal
	}{
		{marks: 0, want: decimal.Zero},
		{marks: 2, want: decimal.Zero},
		{marks: 3, want: decimal.NewFromFloat(0.5)},
		{marks: 4, want: decimal.NewFromFloat(0.5)},
		{marks: 5, want: decimal.NewFromInt(1)},
		{marks: 6, want: decimal.NewFromFloat(1.5)},
		{marks: 7, want: decimal.NewFromInt(2)},
	}

	for _, tt := range tests {
		got := DeductionDays(tt.marks, 3, 5)
		assert.True(t, tt.want.Equal(got), "marks=%d want=%s got=%s", tt.marks, tt.want, got)
	}
}

func TestLateMarkRange(t *testing.T) {
	from, to, ok := lateMarkRange(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), to)

	_, _, ok = lateMarkRange(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}
