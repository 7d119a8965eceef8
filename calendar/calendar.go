package calendar

import (
	ics "github.com/arran4/golang-ical"
)

// ProdID identifies this software in every calendar it produces. Calendar
// clients key cached feeds on it, so it must stay stable.
const ProdID = "-//sveder.com/trello_to_ical//EN"

// BuildCalendar assembles the events, in the order given, into an iCalendar
// document. An empty event list yields a valid calendar with metadata only.
// Serialization to wire text is the caller's job via Calendar.Serialize.
func BuildCalendar(events []Event) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetProductId(ProdID)
	cal.SetVersion("2.0")

	for _, ev := range events {
		component := cal.AddEvent(ev.UID)
		component.SetSummary(ev.Summary)
		component.SetDescription(ev.Description)
		// DTSTAMP pinned to the event start keeps repeated renders
		// byte-identical for unchanged cards.
		component.SetDtStampTime(ev.Start)
		component.SetStartAt(ev.Start)
		component.SetEndAt(ev.End)
	}

	return cal
}
