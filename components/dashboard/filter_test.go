package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activityFixture(n int) []ActivityRecord {
	out := make([]ActivityRecord, n)
	for i := range out {
		out[i] = ActivityRecord{
			Date:        "2025-01-" + twoDigits(i+1),
			ActiveUsers: 100 + i,
			NewUsers:    10 + i,
			Sessions:    200 + i,
		}
	}
	return out
}

func twoDigits(n int) string {
	const digits = "0123456789"
	return string([]byte{digits[(n/10)%10], digits[n%10]})
}

func TestFilterActivityPrefixLengths(t *testing.T) {
	for _, size := range []int{0, 3, 7, 15, 45, 120} {
		baseline := activityFixture(size)
		for r, n := range rangeLengths {
			got, ok := FilterActivity(baseline, r)
			require.True(t, ok)
			assert.Len(t, got, min(n, size), "range %s over %d records", r, size)
			if len(got) > 0 {
				assert.Equal(t, baseline[:len(got)], got)
			}
		}
		all, ok := FilterActivity(baseline, RangeAll)
		require.True(t, ok)
		assert.Equal(t, baseline, all)
	}
}

func TestFilterActivityScenarioFifteenRecords(t *testing.T) {
	baseline := DefaultSnapshot().UserActivity
	require.Len(t, baseline, 15)

	week, ok := FilterActivity(baseline, Range7Days)
	require.True(t, ok)
	assert.Len(t, week, 7)
	assert.Equal(t, baseline[0].Date, week[0].Date)

	all, ok := FilterActivity(baseline, RangeAll)
	require.True(t, ok)
	assert.Len(t, all, 15)
}

func TestFilterActivityDoesNotAliasBaseline(t *testing.T) {
	baseline := activityFixture(10)
	got, _ := FilterActivity(baseline, Range7Days)
	got[0].ActiveUsers = -1
	assert.Equal(t, 100, baseline[0].ActiveUsers)

	all, _ := FilterActivity(baseline, RangeAll)
	all[1].Sessions = -1
	assert.Equal(t, 201, baseline[1].Sessions)
}

func TestFilterActivityUnknownRange(t *testing.T) {
	got, ok := FilterActivity(activityFixture(5), DateRange("14d"))
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestParseDateRange(t *testing.T) {
	r, err := ParseDateRange(" 7D ")
	require.NoError(t, err)
	assert.Equal(t, Range7Days, r)

	_, err = ParseDateRange("yesterday")
	assert.ErrorIs(t, err, ErrUnknownDateRange)
}
