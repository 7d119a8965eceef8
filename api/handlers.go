package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/devpall/trello-calendar-feed/calendar"
	"github.com/devpall/trello-calendar-feed/database"
	"github.com/devpall/trello-calendar-feed/integrations"
	"github.com/devpall/trello-calendar-feed/internal/models"
)

type Handler struct {
	DB     *gorm.DB
	APIKey string
}

func (h *Handler) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CalendarFeedHandler renders one feed's calendar document. The URL token is
// the only credential; an unknown token is a plain 404.
func (h *Handler) CalendarFeedHandler(c *gin.Context) {
	token := c.Param("token")

	feed, err := database.FeedByURL(h.DB, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		zap.L().Error("Failed to look up feed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up feed"})
		return
	}

	database.TouchLastAccess(h.DB, &feed)

	client := integrations.NewTrelloClient(h.APIKey, feed.User.UserToken)
	cal, err := calendar.CreateCalendarFromFeed(c.Request.Context(), client, feed, time.Now().UTC())
	if err != nil {
		var upstream *integrations.UpstreamError
		var dueDate *calendar.DueDateParseError
		switch {
		case errors.As(err, &upstream):
			zap.L().Error("Trello fetch failed for feed", zap.Uint("feedID", feed.ID), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch cards from Trello"})
		case errors.As(err, &dueDate):
			zap.L().Error("Trello returned an unparseable due date", zap.Uint("feedID", feed.ID), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Trello returned an unparseable due date"})
		default:
			zap.L().Error("Failed to render feed", zap.Uint("feedID", feed.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render feed"})
		}
		return
	}

	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(cal.Serialize()))
}

type createFeedRequest struct {
	UserName      string   `json:"username" binding:"required"`
	UserToken     string   `json:"token" binding:"required"`
	MemberID      string   `json:"member_id" binding:"required"`
	OnlyAssigned  bool     `json:"only_assigned"`
	IsAllDayEvent bool     `json:"is_all_day_event"`
	EventLength   int      `json:"event_length"`
	BoardIDs      []string `json:"board_ids" binding:"required,min=1"`
}

// CreateFeedHandler registers the user on first sight and stores a new feed
// over the requested boards. Board names are resolved against the boards the
// token can actually see, which also rejects boards it can't.
func (h *Handler) CreateFeedHandler(c *gin.Context) {
	var req createFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}

	user, err := database.GetOrCreateUser(h.DB, req.UserToken, req.UserName, req.MemberID)
	if err != nil {
		zap.L().Error("Failed to get or create user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store user"})
		return
	}

	client := integrations.NewTrelloClient(h.APIKey, req.UserToken)
	visible, err := client.ListBoards(c.Request.Context())
	if err != nil {
		zap.L().Error("Failed to list boards from Trello", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to list boards from Trello"})
		return
	}

	namesByID := make(map[string]string, len(visible))
	for _, board := range visible {
		namesByID[board.ID] = board.Name
	}

	boards := make([]models.Board, 0, len(req.BoardIDs))
	for _, id := range req.BoardIDs {
		name, ok := namesByID[id]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Board " + id + " is not visible to this token"})
			return
		}
		boards = append(boards, models.Board{BoardID: id, Name: name})
	}

	feed, err := database.CreateFeed(h.DB, user, database.FeedOptions{
		OnlyAssigned:  req.OnlyAssigned,
		IsAllDayEvent: req.IsAllDayEvent,
		EventLength:   req.EventLength,
	}, boards)
	if err != nil {
		zap.L().Error("Failed to create feed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create feed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": feed.URL})
}

// ListBoardsHandler returns the boards a Trello token can see, for the feed
// creation flow to present as choices.
func (h *Handler) ListBoardsHandler(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing token query parameter"})
		return
	}

	client := integrations.NewTrelloClient(h.APIKey, token)
	boards, err := client.ListBoards(c.Request.Context())
	if err != nil {
		zap.L().Error("Failed to list boards from Trello", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to list boards from Trello"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"boards": boards})
}
