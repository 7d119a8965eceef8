package calendar

import (
	"context"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/devpall/trello-calendar-feed/internal/models"
)

// CardSource supplies the boards and cards visible to one user's credential.
// Implemented by integrations.TrelloClient; tests supply stubs.
type CardSource interface {
	ListBoards(ctx context.Context) ([]models.TrelloBoard, error)
	ListCards(ctx context.Context, boardID string) ([]models.TrelloCard, error)
}

// CreateCalendarFromFeed renders one feed: fetch the boards the credential
// can see, fetch cards for the tracked ones, filter, map, and build the
// calendar document.
//
// Source errors propagate unchanged and unretried. One bad card fails the
// whole render; there is no partial calendar.
func CreateCalendarFromFeed(ctx context.Context, src CardSource, feed models.Feed, now time.Time) (*ics.Calendar, error) {
	boards, err := src.ListBoards(ctx)
	if err != nil {
		return nil, err
	}

	tracked := feed.BoardIDSet()
	cardsByBoard := make(map[string][]models.TrelloCard, len(tracked))
	for _, board := range boards {
		if !tracked[board.ID] {
			continue
		}
		cards, err := src.ListCards(ctx, board.ID)
		if err != nil {
			return nil, err
		}
		cardsByBoard[board.ID] = cards
	}

	eligible, err := EligibleCards(feed, boards, cardsByBoard, now)
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(eligible))
	for _, card := range eligible {
		event, err := EventFromCard(card, feed)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return BuildCalendar(events), nil
}
