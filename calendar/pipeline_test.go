package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/devpall/trello-calendar-feed/internal/models"
)

type stubCardSource struct {
	boards    []models.TrelloBoard
	boardsErr error

	cards    map[string][]models.TrelloCard
	cardsErr error

	cardCalls []string
}

func (s *stubCardSource) ListBoards(ctx context.Context) ([]models.TrelloBoard, error) {
	if s.boardsErr != nil {
		return nil, s.boardsErr
	}
	return s.boards, nil
}

func (s *stubCardSource) ListCards(ctx context.Context, boardID string) ([]models.TrelloCard, error) {
	s.cardCalls = append(s.cardCalls, boardID)
	if s.cardsErr != nil {
		return nil, s.cardsErr
	}
	return s.cards[boardID], nil
}

func TestCreateCalendarFromFeed(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	src := &stubCardSource{
		boards: []models.TrelloBoard{
			{ID: "b1", Name: "Tracked"},
			{ID: "b2", Name: "Untracked"},
		},
		cards: map[string][]models.TrelloCard{
			"b1": {
				{ID: "c1", Name: "First", Due: "2025-06-02T10:00:00.000Z", URL: "https://t/c1", BoardID: "b1"},
				{ID: "c2", Name: "No due date", BoardID: "b1"},
				{ID: "c3", Name: "Third", Due: "2025-06-03T10:00:00.000Z", URL: "https://t/c3", BoardID: "b1"},
			},
		},
	}

	cal, err := CreateCalendarFromFeed(context.Background(), src, testFeed(false, "b1"), now)
	if err != nil {
		t.Fatalf("CreateCalendarFromFeed returned error: %v", err)
	}

	if len(src.cardCalls) != 1 || src.cardCalls[0] != "b1" {
		t.Errorf("Expected cards fetched only for tracked board b1, got %v", src.cardCalls)
	}

	components := cal.Events()
	if len(components) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(components))
	}

	wantUIDs := []string{"c1trello_to_ical", "c3trello_to_ical"}
	for i, component := range components {
		uid := component.GetProperty(ics.ComponentPropertyUniqueId)
		if uid == nil || uid.Value != wantUIDs[i] {
			t.Errorf("Event %d: expected UID %q, got %v", i, wantUIDs[i], uid)
		}
	}
}

func TestCreateCalendarFromFeedNoEligibleCards(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	src := &stubCardSource{
		boards: []models.TrelloBoard{{ID: "b1", Name: "Tracked"}},
		cards: map[string][]models.TrelloCard{
			"b1": {{ID: "c1", Name: "Past", Due: "2000-01-01T10:00:00.000Z", BoardID: "b1"}},
		},
	}

	cal, err := CreateCalendarFromFeed(context.Background(), src, testFeed(false, "b1"), now)
	if err != nil {
		t.Fatalf("CreateCalendarFromFeed returned error: %v", err)
	}
	if got := len(cal.Events()); got != 0 {
		t.Fatalf("Expected empty calendar, got %d events", got)
	}
}

func TestCreateCalendarFromFeedPropagatesSourceErrors(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fetchErr := errors.New("trello is down")

	tests := []struct {
		name string
		src  *stubCardSource
	}{
		{
			"board listing fails",
			&stubCardSource{boardsErr: fetchErr},
		},
		{
			"card listing fails",
			&stubCardSource{
				boards:   []models.TrelloBoard{{ID: "b1"}},
				cardsErr: fetchErr,
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cal, err := CreateCalendarFromFeed(context.Background(), test.src, testFeed(false, "b1"), now)
			if !errors.Is(err, fetchErr) {
				t.Fatalf("Expected fetch error to propagate, got %v", err)
			}
			if cal != nil {
				t.Errorf("Expected no calendar alongside error")
			}
		})
	}
}

func TestCreateCalendarFromFeedFailsOnMalformedDueDate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	src := &stubCardSource{
		boards: []models.TrelloBoard{{ID: "b1"}},
		cards: map[string][]models.TrelloCard{
			"b1": {
				{ID: "c1", Name: "Fine", Due: "2025-06-02T10:00:00.000Z", BoardID: "b1"},
				{ID: "c2", Name: "Broken", Due: "2999-01-01", BoardID: "b1"},
			},
		},
	}

	cal, err := CreateCalendarFromFeed(context.Background(), src, testFeed(false, "b1"), now)

	var parseErr *DueDateParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Expected DueDateParseError, got %v", err)
	}
	if cal != nil {
		t.Errorf("Expected no partial calendar alongside error")
	}
}
