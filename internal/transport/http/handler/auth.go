package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-gin-article-api/internal/core/apperr"
	"go-gin-article-api/internal/domain"
	"go-gin-article-api/internal/service"
	httpez "go-gin-article-api/internal/transport/http/ez"
	mdw "go-gin-article-api/internal/transport/http/middleware"
)

type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (domain.Profile, error)
	Login(ctx context.Context, email, password string) (service.Tokens, error)
	Profile(ctx context.Context, userID string) (domain.Profile, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) (domain.Profile, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, userID, newPassword string) (domain.Profile, error)
}

// CookieOptions 登录令牌 Cookie 的属性；MaxAge 与令牌有效期一致
type CookieOptions struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type AuthHandler struct {
	svc         AuthService
	requireAuth gin.HandlerFunc
	cookie      CookieOptions
}

func NewAuthHandler(svc AuthService, requireAuth gin.HandlerFunc, cookie CookieOptions) *AuthHandler {
	return &AuthHandler{svc: svc, requireAuth: requireAuth, cookie: cookie}
}

func (h *AuthHandler) Priority() int { return 10 }

type registerIn struct {
	Name     string `json:"name"     binding:"required,min=3,max=30" ez:"trim"`
	Email    string `json:"email"    binding:"required,email"        ez:"trim"`
	Password string `json:"password" binding:"required,min=8,max=20"`
}

type loginIn struct {
	Email    string `json:"email"    binding:"required,email" ez:"trim"`
	Password string `json:"password" binding:"required,min=8,max=20"`
}

type changePasswordIn struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8,max=20"`
}

type forgetPasswordIn struct {
	Email string `json:"email" binding:"required,email" ez:"trim"`
}

type resetPasswordIn struct {
	ID       string `json:"id"       binding:"required"        ez:"trim"`
	Password string `json:"password" binding:"required,min=8,max=20"`
}

type accessTokenOut struct {
	AccessToken string `json:"accessToken"`
}

func (h *AuthHandler) MountAPI(api *gin.RouterGroup) {
	ez := httpez.New(api.Group("/auth"))

	httpez.RegisterAction(ez, httpez.Action[registerIn, domain.Profile]{
		Method:  http.MethodPost,
		Path:    "/register",
		Binder:  httpez.BindJSON,
		Status:  http.StatusCreated,
		Message: "User created successfully",
		Handler: func(c *gin.Context, in *registerIn) (domain.Profile, error) {
			return h.svc.Register(c.Request.Context(), service.RegisterInput{Name: in.Name, Email: in.Email, Password: in.Password})
		},
	})

	httpez.RegisterAction(ez, httpez.Action[loginIn, service.Tokens]{
		Method:  http.MethodPost,
		Path:    "/login",
		Binder:  httpez.BindJSON,
		Message: "Logged in successfully",
		Handler: func(c *gin.Context, in *loginIn) (service.Tokens, error) {
			t, err := h.svc.Login(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				return t, err
			}
			h.setCookie(c, mdw.CookieRefreshToken, t.RefreshToken, h.cookie.RefreshTTL)
			h.setCookie(c, mdw.CookieAccessToken, t.AccessToken, h.cookie.AccessTTL)
			return t, nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, domain.Profile]{
		Method:  http.MethodGet,
		Path:    "/me",
		Binder:  httpez.BindNone,
		Auth:    true,
		Message: "Profile fetched Successfully",
		Handler: func(c *gin.Context, _ *struct{}) (domain.Profile, error) {
			return h.svc.Profile(c.Request.Context(), c.GetString(mdw.KeyUserID))
		},
	}, h.requireAuth)

	httpez.RegisterAction(ez, httpez.Action[struct{}, accessTokenOut]{
		Method:  http.MethodPost,
		Path:    "/new-access-token",
		Binder:  httpez.BindNone,
		Message: "Access Token Generated successfully",
		Handler: func(c *gin.Context, _ *struct{}) (accessTokenOut, error) {
			rt, _ := c.Cookie(mdw.CookieRefreshToken)
			access, err := h.svc.Refresh(c.Request.Context(), rt)
			if err != nil {
				return accessTokenOut{}, err
			}
			h.setCookie(c, mdw.CookieAccessToken, access, h.cookie.AccessTTL)
			return accessTokenOut{AccessToken: access}, nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[changePasswordIn, domain.Profile]{
		Method:  http.MethodPatch,
		Path:    "/change-password",
		Binder:  httpez.BindJSON,
		Auth:    true,
		Message: "Password Changed Successfully",
		Handler: func(c *gin.Context, in *changePasswordIn) (domain.Profile, error) {
			return h.svc.ChangePassword(c.Request.Context(), c.GetString(mdw.KeyUserID), in.OldPassword, in.NewPassword)
		},
	}, h.requireAuth)

	httpez.RegisterAction(ez, httpez.Action[forgetPasswordIn, struct{}]{
		Method:  http.MethodPost,
		Path:    "/forget-password",
		Binder:  httpez.BindJSON,
		Message: "Please, check your email",
		Handler: func(c *gin.Context, in *forgetPasswordIn) (struct{}, error) {
			return struct{}{}, h.svc.ForgotPassword(c.Request.Context(), in.Email)
		},
	})

	// 重置令牌放在 Authorization 头里
	httpez.RegisterAction(ez, httpez.Action[resetPasswordIn, domain.Profile]{
		Method:  http.MethodPost,
		Path:    "/reset-password",
		Binder:  httpez.BindJSON,
		Message: "Password reset successfully",
		Handler: func(c *gin.Context, in *resetPasswordIn) (domain.Profile, error) {
			token := mdw.BearerToken(c)
			if token == "" {
				return domain.Profile{}, apperr.Forbidden("forbidden")
			}
			return h.svc.ResetPassword(c.Request.Context(), token, in.ID, in.Password)
		},
	})
}

func (h *AuthHandler) setCookie(c *gin.Context, name, value string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, int(ttl.Seconds()), "/", "", h.cookie.Secure, true)
}
