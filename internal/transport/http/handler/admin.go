package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"go-gin-article-api/internal/domain"
	"go-gin-article-api/internal/service"
	httpez "go-gin-article-api/internal/transport/http/ez"
)

type UserService interface {
	List(ctx context.Context, raw url.Values) (service.Page[domain.Profile], error)
}

// AdminHandler 管理端接口；分组需已挂 AuthJWT + RequireRole(admin)
type AdminHandler struct {
	users UserService
}

func NewAdminHandler(users UserService) *AdminHandler { return &AdminHandler{users: users} }

func (h *AdminHandler) MountAdmin(admin *gin.RouterGroup) {
	ez := httpez.New(admin)

	// GET /admin/v1/users?searchTerm=&role=&sortBy=&page=&limit=
	httpez.RegisterAction(ez, httpez.Action[struct{}, service.Page[domain.Profile]]{
		Method:  http.MethodGet,
		Path:    "/users",
		Binder:  httpez.BindNone,
		Auth:    true,
		Roles:   []string{domain.RoleAdmin},
		Message: "Users fetched successfully!",
		Handler: func(c *gin.Context, _ *struct{}) (service.Page[domain.Profile], error) {
			return h.users.List(c.Request.Context(), c.Request.URL.Query())
		},
	})
}
