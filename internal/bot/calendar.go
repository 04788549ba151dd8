package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/hotelbot/core/telegram/keyboard"
	"github.com/m3rciful/hotelbot/internal/dialog"
)

// Calendar callback actions, carried in the payload as
// name:action:year:month:day.
const (
	calActionDay    = "DAY"
	calActionNext   = "NEXT-MONTH"
	calActionPrev   = "PREVIOUS-MONTH"
	calActionIgnore = "IGNORE"
)

var monthNames = [...]string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

var weekdayNames = [...]string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}

func calPayload(name, action string, year int, month time.Month, day int) string {
	return fmt.Sprintf("%s:%s:%d:%d:%d", name, action, year, int(month), day)
}

// calendarMarkup renders one month as an inline keyboard: a paging
// header, a weekday row, and a Monday-first day grid.
func calendarMarkup(name string, year int, month time.Month) *tele.ReplyMarkup {
	ignore := calPayload(name, calActionIgnore, year, month, 0)

	rows := [][]keyboard.InlineBtn{
		{
			{Text: "«", Unique: dialog.KeyCal, Data: calPayload(name, calActionPrev, year, month, 0)},
			{Text: fmt.Sprintf("%s %d", monthNames[int(month)-1], year), Unique: dialog.KeyCal, Data: ignore},
			{Text: "»", Unique: dialog.KeyCal, Data: calPayload(name, calActionNext, year, month, 0)},
		},
	}

	weekdays := make([]keyboard.InlineBtn, 0, len(weekdayNames))
	for _, wd := range weekdayNames {
		weekdays = append(weekdays, keyboard.InlineBtn{Text: wd, Unique: dialog.KeyCal, Data: ignore})
	}
	rows = append(rows, weekdays)

	firstDay := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	offset := (int(firstDay.Weekday()) + 6) % 7
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local).Day()

	var week []keyboard.InlineBtn
	for i := 0; i < offset; i++ {
		week = append(week, keyboard.InlineBtn{Text: " ", Unique: dialog.KeyCal, Data: ignore})
	}
	for day := 1; day <= daysInMonth; day++ {
		week = append(week, keyboard.InlineBtn{
			Text:   strconv.Itoa(day),
			Unique: dialog.KeyCal,
			Data:   calPayload(name, calActionDay, year, month, day),
		})
		if len(week) == 7 {
			rows = append(rows, week)
			week = nil
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, keyboard.InlineBtn{Text: " ", Unique: dialog.KeyCal, Data: ignore})
		}
		rows = append(rows, week)
	}

	return keyboard.InlineButtonsRows(rows...)
}

// parseCalendarPayload splits a calendar callback payload back into its
// parts.
func parseCalendarPayload(payload string) (name, action string, year int, month time.Month, day int, err error) {
	parts := strings.Split(payload, ":")
	if len(parts) != 5 {
		return "", "", 0, 0, 0, fmt.Errorf("calendar payload: want 5 parts, got %d", len(parts))
	}
	y, yErr := strconv.Atoi(parts[2])
	m, mErr := strconv.Atoi(parts[3])
	d, dErr := strconv.Atoi(parts[4])
	if yErr != nil || mErr != nil || dErr != nil || m < 1 || m > 12 {
		return "", "", 0, 0, 0, fmt.Errorf("calendar payload: bad date in %q", payload)
	}
	return parts[0], parts[1], y, time.Month(m), d, nil
}

// shiftMonth pages the calendar one month in either direction, wrapping
// the year at the edges.
func shiftMonth(year int, month time.Month, forward bool) (int, time.Month) {
	if forward {
		if month == time.December {
			return year + 1, time.January
		}
		return year, month + 1
	}
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}
