package leadforms

import (
	"time"
)

// DateLayout is how schedule dates are offered and submitted, e.g.
// "Monday Jan 02, 2006".
const DateLayout = "Monday Jan 02, 2006"

// bookableDays is how many upcoming days a test drive can be booked on.
const bookableDays = 12

// Slot is a two hour test-drive window.
type Slot struct {
	Label     string
	StartHour int
}

// Slots lists the bookable windows in display order.
var Slots = []Slot{
	{Label: "7 am - 9 am", StartHour: 7},
	{Label: "9 am - 11 am", StartHour: 9},
	{Label: "11 am - 1 pm", StartHour: 11},
	{Label: "1 pm - 3 pm", StartHour: 13},
	{Label: "3 pm - 5 pm", StartHour: 15},
	{Label: "5 pm - 7 pm", StartHour: 17},
	{Label: "7 pm - 9 pm", StartHour: 19},
}

// ParseSlot finds a slot by its label.
func ParseSlot(label string) (Slot, bool) {
	for _, s := range Slots {
		if s.Label == label {
			return s, true
		}
	}
	return Slot{}, false
}

// SlotLabels returns the slot labels in display order.
func SlotLabels() []string {
	labels := make([]string, len(Slots))
	for i, s := range Slots {
		labels[i] = s.Label
	}
	return labels
}

// AllowedDates returns the next 12 bookable days starting with today in loc,
// Monday through Saturday. Each value is midnight local time.
func AllowedDates(now time.Time, loc *time.Location) []time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	dates := make([]time.Time, 0, bookableDays)
	for len(dates) < bookableDays {
		if day.Weekday() != time.Sunday {
			dates = append(dates, day)
		}
		day = day.AddDate(0, 0, 1)
	}
	return dates
}

// DateLabels formats AllowedDates for display.
func DateLabels(now time.Time, loc *time.Location) []string {
	dates := AllowedDates(now, loc)
	labels := make([]string, len(dates))
	for i, d := range dates {
		labels[i] = d.Format(DateLayout)
	}
	return labels
}

// resolveSchedule matches the submitted labels against the current choices.
func resolveSchedule(dateLabel, slotLabel string, now time.Time, loc *time.Location) (*Schedule, FieldErrors) {
	errs := FieldErrors{}
	var date time.Time
	found := false
	for _, d := range AllowedDates(now, loc) {
		if d.Format(DateLayout) == dateLabel {
			date, found = d, true
			break
		}
	}
	if dateLabel == "" {
		errs.Add("schedule_date", "This field is required.")
	} else if !found {
		errs.Add("schedule_date", invalidChoice(dateLabel))
	}

	slot, ok := ParseSlot(slotLabel)
	if slotLabel == "" {
		errs.Add("scheduled_slot", "This field is required.")
	} else if !ok {
		errs.Add("scheduled_slot", invalidChoice(slotLabel))
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return &Schedule{
		Date:      date,
		DateLabel: dateLabel,
		Slot:      slot,
		Earliest:  time.Date(date.Year(), date.Month(), date.Day(), slot.StartHour, 0, 0, 0, date.Location()),
	}, nil
}

func invalidChoice(value string) string {
	return "Select a valid choice. " + value + " is not one of the available choices."
}
