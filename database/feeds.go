package database

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/devpall/trello-calendar-feed/internal/models"
)

const (
	saltAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*()_+{}[]"
	saltLength   = 16
)

// newSaltAndURL generates a random salt and the secret URL token derived from
// it. The token is the only thing guarding a feed, so it comes from
// crypto/rand.
func newSaltAndURL(userName string) (salt, urlToken string, err error) {
	raw := make([]byte, saltLength)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("failed to generate salt: %w", err)
	}

	saltBytes := make([]byte, saltLength)
	for i, b := range raw {
		saltBytes[i] = saltAlphabet[int(b)%len(saltAlphabet)]
	}
	salt = string(saltBytes)

	sum := sha512.Sum512([]byte(userName + salt))
	return salt, hex.EncodeToString(sum[:]), nil
}

// GetOrCreateUser looks up the user by Trello member ID, creating the record
// on first sight. The stored token and last-access time are refreshed either
// way, since Trello tokens get rotated.
func GetOrCreateUser(db *gorm.DB, token, userName, memberID string) (models.FeedUser, error) {
	now := time.Now().UTC()

	var user models.FeedUser
	err := db.Where("trello_member_id = ?", memberID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		salt, urlToken, genErr := newSaltAndURL(userName)
		if genErr != nil {
			return models.FeedUser{}, genErr
		}
		user = models.FeedUser{
			UserName:       userName,
			UserToken:      token,
			TrelloMemberID: memberID,
			URL:            urlToken,
			Salt:           salt,
		}
	} else if err != nil {
		return models.FeedUser{}, fmt.Errorf("failed to look up user: %w", err)
	}

	user.UserToken = token
	user.LastAccess = now
	if result := db.Save(&user); result.Error != nil {
		return models.FeedUser{}, fmt.Errorf("failed to save user: %w", result.Error)
	}

	return user, nil
}

// FeedOptions carries the per-feed configuration chosen at creation time.
type FeedOptions struct {
	OnlyAssigned  bool
	IsAllDayEvent bool
	EventLength   int
}

// CreateFeed stores a new feed for the user and attaches the given boards,
// creating board records that don't exist yet. Returns the feed with its
// secret URL token populated.
func CreateFeed(db *gorm.DB, user models.FeedUser, opts FeedOptions, boards []models.Board) (models.Feed, error) {
	salt, urlToken, err := newSaltAndURL(user.UserName)
	if err != nil {
		return models.Feed{}, err
	}

	feed := models.Feed{
		UserID:        user.ID,
		User:          user,
		URL:           urlToken,
		Salt:          salt,
		OnlyAssigned:  opts.OnlyAssigned,
		IsAllDayEvent: opts.IsAllDayEvent,
		EventLength:   opts.EventLength,
		LastAccess:    time.Now().UTC(),
	}
	if result := db.Omit("Boards", "User").Create(&feed); result.Error != nil {
		return models.Feed{}, fmt.Errorf("failed to create feed: %w", result.Error)
	}

	for _, board := range boards {
		b := board
		if result := db.Where("board_id = ?", b.BoardID).FirstOrCreate(&b); result.Error != nil {
			return models.Feed{}, fmt.Errorf("failed to store board %s: %w", board.BoardID, result.Error)
		}
		if err := db.Model(&feed).Association("Boards").Append(&b); err != nil {
			return models.Feed{}, fmt.Errorf("failed to attach board %s to feed: %w", board.BoardID, err)
		}
	}

	return feed, nil
}

// FeedByURL resolves a feed from its secret URL token, with its user and
// tracked boards loaded. Returns gorm.ErrRecordNotFound for unknown tokens.
func FeedByURL(db *gorm.DB, urlToken string) (models.Feed, error) {
	var feed models.Feed
	err := db.Preload("User").Preload("Boards").Where("url = ?", urlToken).First(&feed).Error
	if err != nil {
		return models.Feed{}, err
	}
	return feed, nil
}

// TouchLastAccess records that the feed was just rendered.
func TouchLastAccess(db *gorm.DB, feed *models.Feed) {
	feed.LastAccess = time.Now().UTC()
	if result := db.Model(feed).Update("last_access", feed.LastAccess); result.Error != nil {
		// Bookkeeping only; a failed touch must not fail the render.
		zap.L().Warn("Failed to update feed last access", zap.Uint("feedID", feed.ID), zap.Error(result.Error))
	}
}
