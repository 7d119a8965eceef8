package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/devpall/trello-calendar-feed/internal/models"
)

const trelloBaseURL = "https://api.trello.com/1"

// cardFields is what we ask Trello to include for each card; everything the
// feed pipeline reads, nothing more.
const cardFields = "id,name,due,url,idMembers,idBoard"

// UpstreamError wraps any failure talking to the Trello API. The feed
// pipeline never retries these; the HTTP layer maps them to a 502.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("trello %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// TrelloClient is a read-only Trello API client scoped to one user's token.
type TrelloClient struct {
	Client   *http.Client
	BaseURL  string
	APIKey   string
	APIToken string
}

func NewTrelloClient(key, token string) *TrelloClient {
	return &TrelloClient{
		Client:   &http.Client{Timeout: 15 * time.Second},
		BaseURL:  trelloBaseURL,
		APIKey:   key,
		APIToken: token,
	}
}

// ListBoards returns the boards visible to the client's token.
func (tc *TrelloClient) ListBoards(ctx context.Context) ([]models.TrelloBoard, error) {
	var boards []models.TrelloBoard
	if err := tc.get(ctx, "/members/me/boards", url.Values{"fields": {"id,name"}}, &boards); err != nil {
		return nil, &UpstreamError{Op: "list boards", Err: err}
	}
	return boards, nil
}

// ListCards returns all cards on the given board.
func (tc *TrelloClient) ListCards(ctx context.Context, boardID string) ([]models.TrelloCard, error) {
	path := fmt.Sprintf("/boards/%s/cards", boardID)
	var cards []models.TrelloCard
	if err := tc.get(ctx, path, url.Values{"fields": {cardFields}}, &cards); err != nil {
		return nil, &UpstreamError{Op: fmt.Sprintf("list cards for board %s", boardID), Err: err}
	}
	return cards, nil
}

func (tc *TrelloClient) get(ctx context.Context, path string, query url.Values, out any) error {
	query.Set("key", tc.APIKey)
	query.Set("token", tc.APIToken)
	apiURL := tc.BaseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create get request: %v", err)
	}

	resp, err := tc.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send get request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("trello API returned non-200 status: %s, body: %s", resp.Status, string(bodyBytes))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode Trello response: %v", err)
	}

	return nil
}
