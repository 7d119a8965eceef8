package models

// TrelloBoard is a board record as returned by the Trello REST API.
type TrelloBoard struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TrelloCard is a card record as returned by the Trello REST API. Due is the
// raw due-date string ("" when the card has no due date); cards with a due
// date carry it in the fixed format 2006-01-02T15:04:05.000Z.
type TrelloCard struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Due       string   `json:"due"`
	URL       string   `json:"url"`
	MemberIDs []string `json:"idMembers"`
	BoardID   string   `json:"idBoard"`
}
