package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_WeekdayIgnoresZones(t *testing.T) {
	d, err := ParseDate("2024-06-03")
	require.NoError(t, err)

	assert.Equal(t, time.Monday, d.Weekday())
	assert.Equal(t, "2024-06-03", d.String())
}

func TestParseDate_Malformed(t *testing.T) {
	for _, in := range []string{"", "2024-13-01", "03/06/2024", "tomorrow"} {
		_, err := ParseDate(in)
		assert.Error(t, err, in)
	}
}

func TestDate_ScanKeepsCivilComponents(t *testing.T) {
	// a date column decoded as midnight in a zone far east of UTC
	loc := time.FixedZone("UTC+14", 14*3600)
	src := time.Date(2024, 6, 3, 0, 0, 0, 0, loc)

	var d Date
	require.NoError(t, d.Scan(src))
	assert.Equal(t, NewDate(2024, time.June, 3), d)

	require.NoError(t, d.Scan("2024-06-04T00:00:00Z"))
	assert.Equal(t, NewDate(2024, time.June, 4), d)
}

func TestDate_AddDaysAndMonthBounds(t *testing.T) {
	d := NewDate(2024, time.January, 31)
	assert.Equal(t, NewDate(2024, time.February, 1), d.AddDays(1))

	first, next := NewDate(2024, time.December, 15).MonthBounds()
	assert.Equal(t, NewDate(2024, time.December, 1), first)
	assert.Equal(t, NewDate(2025, time.January, 1), next)
}

func TestDate_JSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2024, time.June, 3))
	require.NoError(t, err)
	assert.Equal(t, `"2024-06-03"`, string(b))

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-06-10"`), &d))
	assert.Equal(t, time.Monday, d.Weekday())
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("09:30:59")
	require.NoError(t, err)
	assert.Equal(t, "09:30", c.String())

	c, err = ParseClock("7:05")
	require.NoError(t, err)
	assert.Equal(t, "07:05", c.String())

	_, err = ParseClock("25:00")
	assert.Error(t, err)
	_, err = ParseClock("noon")
	assert.Error(t, err)
}

func TestClock_ScanAndValue(t *testing.T) {
	var c Clock
	require.NoError(t, c.Scan([]byte("16:30:00")))
	assert.Equal(t, NewClock(16, 30), c)

	v, err := c.Value()
	require.NoError(t, err)
	assert.Equal(t, "16:30:00", v)
}

func TestAt_UsesLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	at := At(NewDate(2024, time.June, 3), NewClock(9, 0), loc)

	assert.Equal(t, 9, at.Hour())
	assert.Equal(t, time.Date(2024, 6, 3, 3, 30, 0, 0, time.UTC), at.UTC())
}

func TestToday(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2024, 6, 2, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, NewDate(2024, time.June, 3), Today(now, loc))
}
