package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"go-gin-article-api/internal/domain"
	"go-gin-article-api/internal/service"
	httpez "go-gin-article-api/internal/transport/http/ez"
	mdw "go-gin-article-api/internal/transport/http/middleware"
)

type ArticleService interface {
	Create(ctx context.Context, authorID string, in service.ArticleInput) (*domain.Article, error)
	List(ctx context.Context, raw url.Values) (service.Page[domain.Article], error)
	ListOwn(ctx context.Context, authorID string, raw url.Values) (service.Page[domain.Article], error)
	Get(ctx context.Context, id string) (*domain.Article, error)
	Update(ctx context.Context, callerID, id string, in service.ArticleInput) (*domain.Article, error)
	Delete(ctx context.Context, callerID, id string) error
	Summarize(ctx context.Context, id string) (string, error)
}

type ArticleHandler struct {
	svc         ArticleService
	requireAuth gin.HandlerFunc
}

func NewArticleHandler(svc ArticleService, requireAuth gin.HandlerFunc) *ArticleHandler {
	return &ArticleHandler{svc: svc, requireAuth: requireAuth}
}

type articleIn struct {
	Title string   `json:"title" binding:"required,min=10,max=100"     ez:"trim"`
	Body  string   `json:"body"  binding:"required,min=100"            ez:"trim"`
	Tags  []string `json:"tags"  binding:"required,min=1,dive,required" ez:"trim"`
}

func (in *articleIn) input() service.ArticleInput {
	return service.ArticleInput{Title: in.Title, Body: in.Body, Tags: in.Tags}
}

type idOut struct {
	ID string `json:"id"`
}

type summaryOut struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
}

func (h *ArticleHandler) MountAPI(api *gin.RouterGroup) {
	ez := httpez.New(api.Group("/articles"))
	uid := func(c *gin.Context) string { return c.GetString(mdw.KeyUserID) }

	httpez.RegisterAction(ez, httpez.Action[articleIn, *domain.Article]{
		Method:  http.MethodPost,
		Path:    "",
		Binder:  httpez.BindJSON,
		Auth:    true,
		Status:  http.StatusCreated,
		Message: "Article posted successfully!",
		Handler: func(c *gin.Context, in *articleIn) (*domain.Article, error) {
			return h.svc.Create(c.Request.Context(), uid(c), in.input())
		},
	}, h.requireAuth)

	httpez.RegisterAction(ez, httpez.Action[struct{}, service.Page[domain.Article]]{
		Method:  http.MethodGet,
		Path:    "",
		Binder:  httpez.BindNone,
		Message: "Articles fetched successfully!",
		Handler: func(c *gin.Context, _ *struct{}) (service.Page[domain.Article], error) {
			return h.svc.List(c.Request.Context(), c.Request.URL.Query())
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, service.Page[domain.Article]]{
		Method:  http.MethodGet,
		Path:    "/getOwnArticles",
		Binder:  httpez.BindNone,
		Auth:    true,
		Message: "Articles fetched successfully!",
		Handler: func(c *gin.Context, _ *struct{}) (service.Page[domain.Article], error) {
			return h.svc.ListOwn(c.Request.Context(), uid(c), c.Request.URL.Query())
		},
	}, h.requireAuth)

	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.Article]{
		Method:  http.MethodGet,
		Path:    "/:id",
		Binder:  httpez.BindNone,
		Message: "Article fetched successfully!",
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Article, error) {
			return h.svc.Get(c.Request.Context(), c.Param("id"))
		},
	})

	httpez.RegisterAction(ez, httpez.Action[articleIn, *domain.Article]{
		Method:  http.MethodPut,
		Path:    "/:id",
		Binder:  httpez.BindJSON,
		Auth:    true,
		Message: "Article updated successfully!",
		Handler: func(c *gin.Context, in *articleIn) (*domain.Article, error) {
			return h.svc.Update(c.Request.Context(), uid(c), c.Param("id"), in.input())
		},
	}, h.requireAuth)

	httpez.RegisterAction(ez, httpez.Action[struct{}, idOut]{
		Method:  http.MethodDelete,
		Path:    "/:id",
		Binder:  httpez.BindNone,
		Auth:    true,
		Message: "Article deleted successfully!",
		Handler: func(c *gin.Context, _ *struct{}) (idOut, error) {
			id := c.Param("id")
			return idOut{ID: id}, h.svc.Delete(c.Request.Context(), uid(c), id)
		},
	}, h.requireAuth)

	httpez.RegisterAction(ez, httpez.Action[struct{}, summaryOut]{
		Method:  http.MethodPost,
		Path:    "/:id/summarize",
		Binder:  httpez.BindNone,
		Auth:    true,
		Message: "Article summarized successfully!",
		Handler: func(c *gin.Context, _ *struct{}) (summaryOut, error) {
			id := c.Param("id")
			s, err := h.svc.Summarize(c.Request.Context(), id)
			return summaryOut{ID: id, Summary: s}, err
		},
	}, h.requireAuth)
}
