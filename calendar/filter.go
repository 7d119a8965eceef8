package calendar

import (
	"time"

	"github.com/devpall/trello-calendar-feed/internal/models"
)

// EligibleCards selects the cards that belong in the feed's calendar. Boards
// and their cards are walked in the order supplied, and that order is
// preserved in the result.
//
// A card is dropped when its board is not tracked by the feed, when the feed
// is restricted to assigned cards and the feed's user is not an assignee, when
// it has no due date, or when its due date is not strictly after now. The
// caller supplies now so that renders are deterministic under test.
//
// A present but unparseable due date is an error, not a drop.
func EligibleCards(feed models.Feed, boards []models.TrelloBoard, cardsByBoard map[string][]models.TrelloCard, now time.Time) ([]models.TrelloCard, error) {
	tracked := feed.BoardIDSet()

	var eligible []models.TrelloCard
	for _, board := range boards {
		if !tracked[board.ID] {
			continue
		}

		for _, card := range cardsByBoard[board.ID] {
			if !tracked[card.BoardID] {
				continue
			}
			if feed.OnlyAssigned && !assignedTo(card, feed.User.TrelloMemberID) {
				continue
			}
			if card.Due == "" {
				continue
			}

			due, err := parseDueDate(card)
			if err != nil {
				return nil, err
			}
			if !due.After(now) {
				continue
			}

			eligible = append(eligible, card)
		}
	}

	return eligible, nil
}

func assignedTo(card models.TrelloCard, memberID string) bool {
	for _, id := range card.MemberIDs {
		if id == memberID {
			return true
		}
	}
	return false
}
