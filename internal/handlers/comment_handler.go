package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/rating-notify/backend/internal/models"
	"github.com/anonto42/rating-notify/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to rating comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	ratingRepository  repositories.RatingRepository // To verify the rating exists
	events            SocialEventDispatcher
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, ratingRepo repositories.RatingRepository, events SocialEventDispatcher) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		ratingRepository:  ratingRepo,
		events:            events,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/ratings/:rating_id/comments", h.CreateComment)
}

// CreateComment creates a new comment on a rating. The comment notifies the rating's
// owner and earlier commenters; mentioned profiles get a separate mention notification.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	profileID, err := requireProfile(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	ratingID := c.Param("rating_id")

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	// Verify rating exists
	if _, err := h.ratingRepository.GetRatingByID(ctx, ratingID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Rating not found")
		}
		return toHTTPError(err)
	}

	comment := &models.RatingComment{
		RatingID:  ratingID,
		ProfileID: profileID,
		Content:   req.Content,
	}
	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		return toHTTPError(err)
	}

	h.events.Dispatch(ctx, models.NewCommentEvent(profileID, ratingID, comment.ID))
	if len(req.Mentions) > 0 {
		h.events.Dispatch(ctx, models.NewMentionEvent(profileID, ratingID, comment.ID, req.Mentions))
	}

	return c.JSON(http.StatusCreated, comment)
}
