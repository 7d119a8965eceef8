package models

import "time"

// FeedUser is a Trello user we have seen at least once. The URL field is the
// user's own secret token, generated the same way as a feed's.
type FeedUser struct {
	ID             uint   `gorm:"primaryKey"`
	UserName       string
	UserToken      string
	TrelloMemberID string `gorm:"uniqueIndex"`
	URL            string
	Salt           string
	CreatedAt      time.Time
	LastAccess     time.Time
}

// Board is a tracked Trello board. The name is cached at feed-creation time
// so we don't have to hit the Trello API to display it.
type Board struct {
	BoardID string `gorm:"primaryKey"`
	Name    string
}

// Feed is one user's calendar feed configuration. EventLength is in minutes
// and is ignored when IsAllDayEvent is set.
type Feed struct {
	ID            uint `gorm:"primaryKey"`
	UserID        uint
	User          FeedUser `gorm:"foreignKey:UserID"`
	URL           string   `gorm:"uniqueIndex"` // secret feed token
	Salt          string
	OnlyAssigned  bool
	IsAllDayEvent bool
	EventLength   int
	Boards        []Board `gorm:"many2many:feed_boards"`
	CreatedAt     time.Time
	LastAccess    time.Time
}

// BoardIDSet returns the feed's tracked board IDs as a lookup set.
func (f *Feed) BoardIDSet() map[string]bool {
	set := make(map[string]bool, len(f.Boards))
	for _, b := range f.Boards {
		set[b.BoardID] = true
	}
	return set
}
