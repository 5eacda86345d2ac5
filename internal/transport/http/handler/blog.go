package handler

import (
	"github.com/gin-gonic/gin"

	"bloglist-api/internal/app"
	"bloglist-api/internal/transport/http/middleware"
	"bloglist-api/internal/transport/http/response"
)

type BlogHandler struct {
	blogService *app.BlogService
}

type CreateBlogRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  *int   `json:"likes"`
}

type UpdateBlogRequest struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
	URL    *string `json:"url"`
	Likes  *int    `json:"likes"`
}

func NewBlogHandler(blogService *app.BlogService) *BlogHandler {
	return &BlogHandler{blogService: blogService}
}

func (h *BlogHandler) List(c *gin.Context) {
	blogs, err := h.blogService.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	views := make([]blogView, 0, len(blogs))
	for i := range blogs {
		views = append(views, newBlogView(&blogs[i]))
	}
	response.OK(c, views)
}

func (h *BlogHandler) Get(c *gin.Context) {
	blog, err := h.blogService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, newBlogView(blog))
}

func (h *BlogHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		_ = c.Error(app.ErrTokenInvalid)
		return
	}

	var req CreateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(app.Validation("invalid request payload"))
		return
	}

	blog, err := h.blogService.Create(c.Request.Context(), app.CreateBlogInput{
		Title:  req.Title,
		Author: req.Author,
		URL:    req.URL,
		Likes:  req.Likes,
	}, user.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Created(c, newBlogView(blog))
}

func (h *BlogHandler) Update(c *gin.Context) {
	var req UpdateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(app.Validation("invalid request payload"))
		return
	}

	blog, err := h.blogService.Update(c.Request.Context(), c.Param("id"), app.UpdateBlogInput{
		Title:  req.Title,
		Author: req.Author,
		URL:    req.URL,
		Likes:  req.Likes,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.OK(c, newBlogView(blog))
}

func (h *BlogHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		_ = c.Error(app.ErrTokenInvalid)
		return
	}

	if err := h.blogService.Delete(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		_ = c.Error(err)
		return
	}
	response.NoContent(c)
}

func (h *BlogHandler) Events(c *gin.Context) {
	events, err := h.blogService.Events(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, events)
}

func (h *BlogHandler) Stats(c *gin.Context) {
	stats, err := h.blogService.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, stats)
}
