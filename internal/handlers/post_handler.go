package handlers

import (
	"net/http"

	"github.com/anonto42/snapshare/backend/internal/middleware"
	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/anonto42/snapshare/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postService *services.PostService
	cascade     *services.CascadeDeleter
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postService *services.PostService, cascade *services.CascadeDeleter) *PostHandler {
	return &PostHandler{postService: postService, cascade: cascade}
}

// RegisterPostRoutes registers post routes on an authenticated group
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("", h.CreatePost)
	g.GET("", h.GetPosts)
	g.GET("/user/:id", h.GetUserPosts)
	g.DELETE("/:id", h.DeletePost)
}

type createPostResponse struct {
	Message string       `json:"message"`
	Post    *models.Post `json:"post"`
}

// CreatePost handles the multipart form with title, caption and image
func (h *PostHandler) CreatePost(c echo.Context) error {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		return err
	}
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	img, err := formImage(c, "image")
	if err != nil {
		return err
	}

	post, err := h.postService.CreatePost(c.Request().Context(), identity, &req, img)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, createPostResponse{Message: "Post created successfully", Post: post})
}

// GetPosts returns the paginated feed of all posts
func (h *PostHandler) GetPosts(c echo.Context) error {
	page, err := h.postService.Feed(c.Request().Context(), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *PostHandler) GetUserPosts(c echo.Context) error {
	posts, err := h.postService.UserPosts(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

// DeletePost removes one of the caller's posts with its likes and comments
func (h *PostHandler) DeletePost(c echo.Context) error {
	identity, err := middleware.CurrentIdentity(c)
	if err != nil {
		return err
	}
	if err := h.cascade.DeletePost(c.Request().Context(), identity.UserID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Post deleted successfully"})
}
