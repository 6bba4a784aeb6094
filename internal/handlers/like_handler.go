package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/anonto42/rating-notify/backend/internal/models"
	"github.com/anonto42/rating-notify/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// SocialEventDispatcher hands social events to the notification pipeline
type SocialEventDispatcher interface {
	Dispatch(ctx context.Context, ev models.SocialEvent)
}

// LikeHandler handles HTTP requests related to rating likes
type LikeHandler struct {
	likeRepository   repositories.LikeRepository
	ratingRepository repositories.RatingRepository // To verify the rating exists
	events           SocialEventDispatcher
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeRepo repositories.LikeRepository, ratingRepo repositories.RatingRepository, events SocialEventDispatcher) *LikeHandler {
	return &LikeHandler{
		likeRepository:   likeRepo,
		ratingRepository: ratingRepo,
		events:           events,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/ratings/:rating_id/likes", h.LikeRating)
	g.DELETE("/ratings/:rating_id/likes", h.UnlikeRating)
}

// LikeRating handles liking a rating
func (h *LikeHandler) LikeRating(c echo.Context) error {
	profileID, err := requireProfile(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	ratingID := c.Param("rating_id")

	// Verify rating exists
	if _, err := h.ratingRepository.GetRatingByID(ctx, ratingID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Rating not found")
		}
		return toHTTPError(err)
	}

	hasLiked, err := h.likeRepository.HasProfileLikedRating(ctx, ratingID, profileID)
	if err != nil {
		return toHTTPError(err)
	}
	if hasLiked {
		return echo.NewHTTPError(http.StatusConflict, "Rating already liked by this user")
	}

	like := &models.RatingLike{
		RatingID:  ratingID,
		ProfileID: profileID,
	}
	if err := h.likeRepository.CreateLike(ctx, like); err != nil {
		return toHTTPError(err)
	}

	h.events.Dispatch(ctx, models.NewLikeEvent(profileID, ratingID))

	return c.JSON(http.StatusCreated, like)
}

// UnlikeRating handles removing a like from a rating
func (h *LikeHandler) UnlikeRating(c echo.Context) error {
	profileID, err := requireProfile(c)
	if err != nil {
		return err
	}

	if err := h.likeRepository.DeleteLike(c.Request().Context(), c.Param("rating_id"), profileID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Like not found")
		}
		return toHTTPError(err)
	}

	return c.NoContent(http.StatusNoContent)
}
