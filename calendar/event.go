package calendar

import (
	"fmt"
	"time"

	"github.com/devpall/trello-calendar-feed/internal/models"
)

// DueDateLayout is the fixed format Trello uses for card due dates.
const DueDateLayout = "2006-01-02T15:04:05.000Z"

const (
	summaryPrefix = "Trello Item: "
	summaryLimit  = 50
	uidSuffix     = "trello_to_ical"

	allDayDuration = 24 * time.Hour
)

// Event is a single calendar entry derived from one card. It only lives for
// the duration of a feed render; the UID is what lets calendar clients match
// it across renders.
type Event struct {
	UID         string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

// DueDateParseError reports a card whose due-date string does not match
// DueDateLayout. It fails the whole render: skipping the card would serve a
// calendar that silently misses an item.
type DueDateParseError struct {
	CardID string
	Value  string
	Err    error
}

func (e *DueDateParseError) Error() string {
	return fmt.Sprintf("card %s: cannot parse due date %q: %v", e.CardID, e.Value, e.Err)
}

func (e *DueDateParseError) Unwrap() error { return e.Err }

func parseDueDate(card models.TrelloCard) (time.Time, error) {
	start, err := time.Parse(DueDateLayout, card.Due)
	if err != nil {
		return time.Time{}, &DueDateParseError{CardID: card.ID, Value: card.Due, Err: err}
	}
	return start, nil
}

// EventFromCard maps one eligible card to its calendar event. The card must
// have a due date; the filter guarantees that for cards it lets through.
func EventFromCard(card models.TrelloCard, feed models.Feed) (Event, error) {
	start, err := parseDueDate(card)
	if err != nil {
		return Event{}, err
	}

	var end time.Time
	if feed.IsAllDayEvent {
		end = start.Add(allDayDuration)
	} else {
		end = start.Add(time.Duration(feed.EventLength) * time.Minute)
	}

	// The "..." suffix is appended even when the name is shorter than the
	// limit; calendar clients have shown this exact summary for years.
	name := card.Name
	if len(name) > summaryLimit {
		name = name[:summaryLimit]
	}

	return Event{
		UID:         card.ID + uidSuffix,
		Summary:     summaryPrefix + name + "...",
		Description: card.URL,
		Start:       start,
		End:         end,
	}, nil
}
