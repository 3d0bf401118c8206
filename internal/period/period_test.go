package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

// 2024-05-15 is a Wednesday.
var now = time.Date(2024, time.May, 15, 10, 30, 0, 0, time.UTC)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     Name
		from, to string
	}{
		{Today, "2024-05-15", "2024-05-15"},
		{Yesterday, "2024-05-14", "2024-05-14"},
		{ThisWeek, "2024-05-13", "2024-05-15"},
		{Last7Days, "2024-05-09", "2024-05-15"},
		{ThisMonth, "2024-05-01", "2024-05-15"},
		{LastMonth, "2024-04-01", "2024-04-30"},
		{Last30Days, "2024-04-16", "2024-05-15"},
		{ThisQuarter, "2024-04-01", "2024-05-15"},
		{ThisYear, "2024-01-01", "2024-05-15"},
		{LastYear, "2023-01-01", "2023-12-31"},
	}
	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			r, err := Resolve(tt.name, now, time.UTC)
			require.NoError(t, err)
			assert.Equal(t, day(tt.from), r.From)
			assert.Equal(t, day(tt.to), r.To)
		})
	}

	t.Run("all is unbounded", func(t *testing.T) {
		r, err := Resolve(All, now, time.UTC)
		require.NoError(t, err)
		assert.True(t, r.Unbounded())
		assert.True(t, r.Contains(day("1999-01-01")))
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := Resolve("fortnight", now, time.UTC)
		assert.ErrorIs(t, err, ErrUnknownPeriod)
	})

	t.Run("today follows the configured zone", func(t *testing.T) {
		ist := time.FixedZone("IST", 5*3600+1800)
		late := time.Date(2024, time.May, 15, 20, 0, 0, 0, time.UTC)
		r, err := Resolve(Today, late, ist)
		require.NoError(t, err)
		assert.Equal(t, day("2024-05-16"), r.From)
	})

	t.Run("sunday belongs to the week that started monday", func(t *testing.T) {
		sunday := time.Date(2024, time.May, 19, 9, 0, 0, 0, time.UTC)
		r, err := Resolve(ThisWeek, sunday, time.UTC)
		require.NoError(t, err)
		assert.Equal(t, day("2024-05-13"), r.From)
	})

	t.Run("last month across a year boundary", func(t *testing.T) {
		jan := time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)
		r, err := Resolve(LastMonth, jan, time.UTC)
		require.NoError(t, err)
		assert.Equal(t, day("2023-12-01"), r.From)
		assert.Equal(t, day("2023-12-31"), r.To)
	})
}

func TestCustom(t *testing.T) {
	t.Run("inverted range is rejected", func(t *testing.T) {
		_, err := Custom(day("2024-05-10"), day("2024-05-01"))
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("times are truncated to calendar dates", func(t *testing.T) {
		r, err := Custom(time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC), time.Date(2024, 5, 2, 23, 59, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, day("2024-05-01"), r.From)
		assert.Equal(t, day("2024-05-02"), r.To)
	})

	t.Run("open ended", func(t *testing.T) {
		r, err := Custom(day("2024-05-01"), time.Time{})
		require.NoError(t, err)
		assert.False(t, r.Contains(day("2024-04-30")))
		assert.True(t, r.Contains(day("2030-01-01")))
	})
}

func TestContainsIsClosed(t *testing.T) {
	r := Range{From: day("2024-05-01"), To: day("2024-05-31")}
	assert.True(t, r.Contains(day("2024-05-01")))
	assert.True(t, r.Contains(time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, r.Contains(day("2024-06-01")))
	assert.False(t, r.Contains(day("2024-04-30")))
}

func TestBuckets(t *testing.T) {
	t.Run("daily", func(t *testing.T) {
		r := Range{From: day("2024-02-27"), To: day("2024-03-02")}
		b, err := r.Buckets(Daily)
		require.NoError(t, err)
		require.Len(t, b, 5)
		assert.Equal(t, "2024-02-29", b[2].Label)
		assert.Equal(t, b[2].From, b[2].To)
	})

	t.Run("monthly buckets are clipped", func(t *testing.T) {
		r := Range{From: day("2024-01-15"), To: day("2024-03-10")}
		b, err := r.Buckets(Monthly)
		require.NoError(t, err)
		require.Len(t, b, 3)
		assert.Equal(t, day("2024-01-15"), b[0].From)
		assert.Equal(t, day("2024-01-31"), b[0].To)
		assert.Equal(t, day("2024-02-01"), b[1].From)
		assert.Equal(t, day("2024-02-29"), b[1].To)
		assert.Equal(t, "2024-03", b[2].Label)
		assert.Equal(t, day("2024-03-10"), b[2].To)
	})

	t.Run("unbounded", func(t *testing.T) {
		_, err := Range{}.Buckets(Daily)
		assert.ErrorIs(t, err, ErrUnbounded)
	})

	t.Run("too many days", func(t *testing.T) {
		_, err := Range{From: day("2000-01-01"), To: day("2024-01-01")}.Buckets(Daily)
		assert.ErrorIs(t, err, ErrTooManyBuckets)
	})
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity("")
	require.NoError(t, err)
	assert.Equal(t, Daily, g)

	_, err = ParseGranularity("week")
	assert.Error(t, err)
}
