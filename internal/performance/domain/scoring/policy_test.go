package scoring

import (
	"errors"
	"testing"

	"github.com/felixgeelhaar/perfboard/internal/performance/domain/calendar"
	"github.com/felixgeelhaar/perfboard/internal/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestNewPolicy(t *testing.T) {
	tests := []struct {
		name    string
		penalty int
		floor   int
		wantErr bool
	}{
		{"defaults", 1, 20, false},
		{"zero floor", 2, 0, false},
		{"full floor", 1, 100, false},
		{"zero penalty", 0, 20, true},
		{"negative floor", 1, -1, true},
		{"floor above 100", 1, 101, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPolicy(tt.penalty, tt.floor)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrInvalidSpec))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.penalty, p.PenaltyPerDay)
			assert.Equal(t, tt.floor, p.MinimumFloorPercent)
		})
	}
}

func TestPolicy_Floor(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, 2, p.Floor(10))
	assert.Equal(t, 1, p.Floor(2))
	assert.Equal(t, 6, p.Floor(26), "26 * 20% = 5.2 rounds up")
	assert.Equal(t, 0, p.Floor(0))
	assert.Equal(t, 0, Policy{PenaltyPerDay: 1}.Floor(10))
}

func TestPolicy_Compute(t *testing.T) {
	p := DefaultPolicy()
	due := calendar.MustParseDate("2024-11-10")

	t.Run("three days late", func(t *testing.T) {
		r, err := p.Compute(10, due, calendar.MustParseDate("2024-11-13"), Override{})
		require.NoError(t, err)
		assert.Equal(t, Result{BaseScore: 10, DaysLate: 3, DelayPenalty: -3, FinalScore: 7}, r)
	})

	t.Run("late past the floor", func(t *testing.T) {
		r, err := p.Compute(10, due, calendar.MustParseDate("2024-11-30"), Override{})
		require.NoError(t, err)
		assert.Equal(t, 20, r.DaysLate)
		assert.Equal(t, -20, r.DelayPenalty)
		assert.Equal(t, 2, r.FinalScore)
	})

	t.Run("on time", func(t *testing.T) {
		r, err := p.Compute(10, due, due, Override{})
		require.NoError(t, err)
		assert.Equal(t, 0, r.DaysLate)
		assert.Equal(t, 0, r.DelayPenalty)
		assert.Equal(t, 10, r.FinalScore)
	})

	t.Run("early", func(t *testing.T) {
		r, err := p.Compute(10, due, calendar.MustParseDate("2024-11-01"), Override{})
		require.NoError(t, err)
		assert.Equal(t, 0, r.DaysLate)
		assert.Equal(t, 10, r.FinalScore)
	})

	t.Run("override score is clamped by the floor", func(t *testing.T) {
		r, err := p.Compute(10, due, due, Override{Score: intPtr(0)})
		require.NoError(t, err)
		assert.Equal(t, 2, r.FinalScore)
		assert.True(t, r.Overridden)
	})

	t.Run("override score replaces raw", func(t *testing.T) {
		r, err := p.Compute(10, due, calendar.MustParseDate("2024-11-13"), Override{Score: intPtr(12)})
		require.NoError(t, err)
		assert.Equal(t, 12, r.FinalScore)
		assert.Equal(t, -3, r.DelayPenalty)
	})

	t.Run("override penalty rate", func(t *testing.T) {
		r, err := p.Compute(10, due, calendar.MustParseDate("2024-11-12"), Override{PenaltyPerDay: intPtr(3)})
		require.NoError(t, err)
		assert.Equal(t, -6, r.DelayPenalty)
		assert.Equal(t, 4, r.FinalScore)
	})

	t.Run("invalid overrides", func(t *testing.T) {
		_, err := p.Compute(10, due, due, Override{Score: intPtr(-1)})
		assert.ErrorIs(t, err, domain.ErrInvalidSpec)

		_, err = p.Compute(10, due, due, Override{PenaltyPerDay: intPtr(0)})
		assert.ErrorIs(t, err, domain.ErrInvalidSpec)
	})
}

func TestPolicy_Compute_Bounds(t *testing.T) {
	due := calendar.MustParseDate("2024-01-01")

	for _, floorPct := range []int{0, 20, 50, 100} {
		p := Policy{PenaltyPerDay: 1, MinimumFloorPercent: floorPct}
		for _, base := range []int{2, 4, 6, 10, 16, 26} {
			for late := 0; late <= 40; late += 5 {
				r, err := p.Compute(base, due, due.AddDays(late), Override{})
				require.NoError(t, err)

				assert.GreaterOrEqual(t, r.FinalScore*100, base*floorPct)
				assert.GreaterOrEqual(t, r.FinalScore, 0)
				assert.LessOrEqual(t, r.DelayPenalty, 0)
				assert.Equal(t, r.DaysLate == 0, r.DelayPenalty == 0)
			}
		}
	}
}
