package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/hotelbot/internal/dialog"
)

func TestCalendarMarkupGrid(t *testing.T) {
	// September 2026 starts on Tuesday and has 30 days.
	markup := calendarMarkup(dialog.CalendarCheckIn, 2026, time.September)
	rows := markup.InlineKeyboard

	// Header, weekdays, five day rows.
	require.Len(t, rows, 7)
	require.Len(t, rows[0], 3)
	assert.Equal(t, "«", rows[0][0].Text)
	assert.Equal(t, "Сентябрь 2026", rows[0][1].Text)
	assert.Equal(t, "»", rows[0][2].Text)

	require.Len(t, rows[1], 7)
	assert.Equal(t, "Пн", rows[1][0].Text)
	assert.Equal(t, "Вс", rows[1][6].Text)

	// Monday slot is padding, Tuesday is the 1st.
	assert.Equal(t, " ", rows[2][0].Text)
	assert.Equal(t, "1", rows[2][1].Text)

	// The 30th lands on Wednesday of the last row; the rest is padding.
	last := rows[6]
	require.Len(t, last, 7)
	assert.Equal(t, "30", last[2].Text)
	assert.Equal(t, " ", last[3].Text)
}

func TestCalendarPayloadRoundTrip(t *testing.T) {
	payload := calPayload(dialog.CalendarCheckOut, calActionDay, 2026, time.September, 15)
	assert.Equal(t, "calendar_out:DAY:2026:9:15", payload)

	name, action, year, month, day, err := parseCalendarPayload(payload)
	require.NoError(t, err)
	assert.Equal(t, dialog.CalendarCheckOut, name)
	assert.Equal(t, calActionDay, action)
	assert.Equal(t, 2026, year)
	assert.Equal(t, time.September, month)
	assert.Equal(t, 15, day)
}

func TestParseCalendarPayloadRejectsGarbage(t *testing.T) {
	for _, payload := range []string{
		"",
		"calendar_in:DAY:2026:9",
		"calendar_in:DAY:2026:13:1",
		"calendar_in:DAY:yyyy:9:1",
	} {
		_, _, _, _, _, err := parseCalendarPayload(payload)
		assert.Error(t, err, payload)
	}
}

func TestShiftMonth(t *testing.T) {
	y, m := shiftMonth(2026, time.September, true)
	assert.Equal(t, 2026, y)
	assert.Equal(t, time.October, m)

	y, m = shiftMonth(2026, time.December, true)
	assert.Equal(t, 2027, y)
	assert.Equal(t, time.January, m)

	y, m = shiftMonth(2026, time.January, false)
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.December, m)
}
