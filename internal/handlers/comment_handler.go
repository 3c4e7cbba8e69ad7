package handlers

import (
	"net/http"

	"github.com/anonto42/snapshare/backend/internal/middleware"
	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/anonto42/snapshare/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentService *services.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// RegisterCommentRoutes registers comment routes on an authenticated group
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/:postId", h.CreateComment)
	g.GET("/:postId", h.GetComments)
	g.DELETE("/:commentId", h.DeleteComment)
}

func (h *CommentHandler) CreateComment(c echo.Context) error {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		return err
	}
	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return models.NewValidationError("Invalid request payload")
	}

	comment, err := h.commentService.CreateComment(c.Request().Context(), identity, c.Param("postId"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandler) GetComments(c echo.Context) error {
	comments, err := h.commentService.PostComments(c.Request().Context(), c.Param("postId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) DeleteComment(c echo.Context) error {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		return err
	}
	if err := h.commentService.DeleteComment(c.Request().Context(), identity, c.Param("commentId")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Comment deleted successfully"})
}
