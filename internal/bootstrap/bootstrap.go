// Package bootstrap wires configuration into the concrete stores, services and
// HTTP engines shared by cmd/api and cmd/admin.
package bootstrap

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-gin-article-api/internal/core/auth"
	"go-gin-article-api/internal/core/cache"
	"go-gin-article-api/internal/core/config"
	"go-gin-article-api/internal/core/database"
	"go-gin-article-api/internal/core/health"
	"go-gin-article-api/internal/core/logger"
	"go-gin-article-api/internal/core/mail"
	"go-gin-article-api/internal/domain"
	"go-gin-article-api/internal/feature/article"
	"go-gin-article-api/internal/repo"
	"go-gin-article-api/internal/service"
	"go-gin-article-api/internal/summary"
	"go-gin-article-api/internal/transport/http/handler"
	mdw "go-gin-article-api/internal/transport/http/middleware"
	"go-gin-article-api/internal/transport/http/router"
)

type App struct {
	Config   *config.Config
	Log      *zap.Logger
	DB       *gorm.DB
	Cache    *cache.Cache
	Registry *prometheus.Registry
	Health   *health.Checker
	Keys     *auth.Keyring
	Auth     *service.AuthService
	Articles *service.ArticleService
	Users    *service.UserService
}

// New 打开数据库后完成装配
func New(cfg *config.Config, l *zap.Logger) (*App, error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		Logger:             logger.Gorm(l, cfg.DB.LogLevel),
		Log:                l,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	a, err := Wire(cfg, l, db)
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return a, nil
}

// Wire 基于已打开的 *gorm.DB 构建仓储、服务与指标
func Wire(cfg *config.Config, l *zap.Logger, db *gorm.DB) (*App, error) {
	keys, err := auth.NewKeyring(cfg.JWT)
	if err != nil {
		return nil, err
	}
	mailer, err := mail.NewSender(cfg.Mail, l)
	if err != nil {
		return nil, fmt.Errorf("mail sender: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	c := cache.New(cfg.Redis)
	deps := map[string]health.Pinger{"db": database.Pinger{DB: db}}
	if c != nil {
		deps["redis"] = c
	}

	users := repo.NewUserRepo(db)
	a := &App{
		Config:   cfg,
		Log:      l,
		DB:       db,
		Cache:    c,
		Registry: reg,
		Health:   health.NewChecker(deps, l, reg),
		Keys:     keys,
		Auth: service.NewAuthService(service.AuthDeps{
			Users:   users,
			Keys:    keys,
			Mailer:  mailer,
			Config:  cfg.Auth,
			AppName: cfg.App.Name,
			Log:     l.Named("auth"),
			Metrics: service.NewMetrics(reg),
		}),
		Articles: service.NewArticleService(service.ArticleDeps{
			Repo:       repo.NewArticleRepo(db),
			Cache:      c,
			Summarizer: summary.New(cfg.Summary),
			Log:        l.Named("article"),
		}),
		Users: service.NewUserService(users),
	}
	return a, nil
}

// Migrate 建表（users、articles、article_tags）
func (a *App) Migrate() error {
	if err := a.DB.AutoMigrate(article.Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

func (a *App) routerDeps(engine string) router.Deps {
	return router.Deps{
		Log:            a.Log,
		Metrics:        mdw.NewHTTPMetrics(a.Registry, engine),
		Health:         a.Health,
		RequestTimeout: time.Duration(a.Config.App.HTTP.RequestTimeoutSec) * time.Second,
		CORSOrigins:    a.Config.App.HTTP.CORSOrigins,
	}
}

// APIEngine 用户端路由
func (a *App) APIEngine() *gin.Engine {
	requireAuth := mdw.AuthJWT(a.Auth)
	return router.NewAPIEngine(a.routerDeps("api"),
		handler.NewAuthHandler(a.Auth, requireAuth, handler.CookieOptions{
			Secure:     a.Config.Auth.CookieSecure,
			AccessTTL:  a.Keys.Access.TTL,
			RefreshTTL: a.Keys.Refresh.TTL,
		}),
		handler.NewArticleHandler(a.Articles, requireAuth),
	)
}

// AdminEngine 管理端路由，仅 admin 角色可访问 /admin/v1
func (a *App) AdminEngine() *gin.Engine {
	guard := []gin.HandlerFunc{mdw.AuthJWT(a.Auth), mdw.RequireRole(domain.RoleAdmin)}
	return router.NewAdminEngine(a.routerDeps("admin"), a.Registry, guard, handler.NewAdminHandler(a.Users))
}

func (a *App) Close() {
	if err := a.Cache.Close(); err != nil {
		a.Log.Warn("close redis", zap.Error(err))
	}
	if err := database.Close(a.DB); err != nil {
		a.Log.Warn("close db", zap.Error(err))
	}
}
