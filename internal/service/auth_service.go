package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-gin-article-api/internal/core/apperr"
	"go-gin-article-api/internal/core/auth"
	"go-gin-article-api/internal/core/config"
	"go-gin-article-api/internal/core/mail"
	"go-gin-article-api/internal/domain"
	"go-gin-article-api/pkg/utils"
)

const msgNotAuthorized = "you are not authorized"

type AuthService struct {
	users   domain.UserRepository
	keys    *auth.Keyring
	mailer  mail.Sender
	cfg     config.Auth
	appName string
	log     *zap.Logger
	metrics *Metrics
	now     func() time.Time
	newID   func() string
}

type AuthDeps struct {
	Users   domain.UserRepository
	Keys    *auth.Keyring
	Mailer  mail.Sender
	Config  config.Auth
	AppName string
	Log     *zap.Logger
	Metrics *Metrics
	Now     func() time.Time // nil = time.Now
	NewID   func() string    // nil = utils.NewID
}

func NewAuthService(d AuthDeps) *AuthService {
	s := &AuthService{
		users:   d.Users,
		keys:    d.Keys,
		mailer:  d.Mailer,
		cfg:     d.Config,
		appName: d.AppName,
		log:     d.Log,
		metrics: d.Metrics,
		now:     d.Now,
		newID:   d.NewID,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = utils.NewID
	}
	return s
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Register 邮箱已存在返回 Conflict；并发注册由唯一索引兜底
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (p domain.Profile, err error) {
	defer func() { s.metrics.observe("register", err) }()

	email := strings.TrimSpace(in.Email)
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return domain.Profile{}, apperr.Internal("find user", err)
	}
	if existing != nil {
		return domain.Profile{}, apperr.Conflict("email already used")
	}
	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return domain.Profile{}, apperr.Internal("hash password", err)
	}
	u := &domain.User{
		ID:           s.newID(),
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return domain.Profile{}, err
		}
		return domain.Profile{}, apperr.Internal("create user", err)
	}
	s.log.Info("user registered", zap.String("userId", u.ID))
	return u.Profile(), nil
}

// Login 邮箱不存在与密码错误返回同一条 Unauthorized
func (s *AuthService) Login(ctx context.Context, email, password string) (t Tokens, err error) {
	defer func() { s.metrics.observe("login", err) }()

	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return Tokens{}, apperr.Internal("find user", err)
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return Tokens{}, apperr.Unauthorized("invalid email or password")
	}
	id := auth.Identity{Email: u.Email, Name: u.Name}
	access, err := s.keys.Access.Issue(id)
	if err != nil {
		return Tokens{}, apperr.Internal("issue access token", err)
	}
	refresh, err := s.keys.Refresh.Issue(id)
	if err != nil {
		return Tokens{}, apperr.Internal("issue refresh token", err)
	}
	return Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

// Authenticate 校验访问令牌并加载用户；用户不存在或令牌早于最近一次改密均视为未授权
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, apperr.Unauthorized(msgNotAuthorized)
	}
	claims, err := s.keys.Access.Parse(token)
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.KindUnauthorized, Msg: msgNotAuthorized, Err: err}
	}
	return s.loadFresh(ctx, claims)
}

func (s *AuthService) loadFresh(ctx context.Context, claims *auth.Claims) (*domain.User, error) {
	u, err := s.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		return nil, apperr.Internal("find user", err)
	}
	if u == nil {
		return nil, apperr.Unauthorized(msgNotAuthorized)
	}
	if u.PasswordChangedAt != nil && claims.IssuedBefore(*u.PasswordChangedAt) {
		return nil, apperr.Unauthorized(msgNotAuthorized)
	}
	return u, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (domain.Profile, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.Profile{}, apperr.Internal("find user", err)
	}
	if u == nil {
		return domain.Profile{}, apperr.Unauthorized(msgNotAuthorized)
	}
	return u.Profile(), nil
}

// Refresh 用刷新令牌换新的访问令牌；同样受改密失效规则约束
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (access string, err error) {
	defer func() { s.metrics.observe("refresh", err) }()

	if refreshToken == "" {
		return "", apperr.Unauthorized(msgNotAuthorized)
	}
	claims, err := s.keys.Refresh.Parse(refreshToken)
	if err != nil {
		return "", &apperr.Error{Kind: apperr.KindUnauthorized, Msg: msgNotAuthorized, Err: err}
	}
	u, err := s.loadFresh(ctx, claims)
	if err != nil {
		return "", err
	}
	access, err = s.keys.Access.Issue(auth.Identity{Email: u.Email, Name: u.Name})
	if err != nil {
		return "", apperr.Internal("issue access token", err)
	}
	return access, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) (p domain.Profile, err error) {
	defer func() { s.metrics.observe("change_password", err) }()

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.Profile{}, apperr.Internal("find user", err)
	}
	if u == nil {
		return domain.Profile{}, apperr.NotFound("user not found")
	}
	if !utils.CheckPassword(oldPassword, u.PasswordHash) {
		return domain.Profile{}, apperr.Forbidden("invalid credentials")
	}
	return s.setPassword(ctx, u, newPassword)
}

// ForgotPassword 签发重置令牌并发送包含 id 与 token 的链接
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (err error) {
	defer func() { s.metrics.observe("forgot_password", err) }()

	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return apperr.Internal("find user", err)
	}
	if u == nil {
		if s.cfg.ConcealUnknownEmail {
			s.log.Info("password reset requested for unknown email")
			return nil
		}
		return apperr.NotFound("user not found")
	}
	token, err := s.keys.Reset.Issue(auth.Identity{Email: u.Email, Name: u.Name})
	if err != nil {
		return apperr.Internal("issue reset token", err)
	}
	subject, html, err := mail.ResetEmail(mail.ResetData{
		AppName: s.appName,
		Link:    ResetLink(s.cfg.ResetLink, u.ID, token),
		TTL:     s.keys.Reset.TTL,
		Year:    s.now().Year(),
	})
	if err != nil {
		return apperr.Internal("render reset email", err)
	}
	if err := s.mailer.Send(ctx, u.Email, subject, html); err != nil {
		s.log.Error("send reset email", zap.String("userId", u.ID), zap.Error(err))
		return apperr.Internal("failed to send reset email", err)
	}
	return nil
}

// ResetPassword 令牌无效返回 Forbidden，此时口令不变
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, userID, newPassword string) (p domain.Profile, err error) {
	defer func() { s.metrics.observe("reset_password", err) }()

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.Profile{}, apperr.Internal("find user", err)
	}
	if u == nil {
		return domain.Profile{}, apperr.NotFound("user not found")
	}
	claims, err := s.keys.Reset.Parse(resetToken)
	if err != nil {
		return domain.Profile{}, &apperr.Error{Kind: apperr.KindForbidden, Msg: "forbidden", Err: err}
	}
	if s.cfg.BindResetToken && claims.Email != u.Email {
		return domain.Profile{}, apperr.Forbidden("forbidden")
	}
	return s.setPassword(ctx, u, newPassword)
}

// setPassword 新哈希与改密时间在同一条 UPDATE 中写入
func (s *AuthService) setPassword(ctx context.Context, u *domain.User, password string) (domain.Profile, error) {
	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return domain.Profile{}, apperr.Internal("hash password", err)
	}
	// 截到毫秒，库里存的值与比较用的值一致（MySQL datetime(3) 会四舍五入）
	changedAt := s.now().UTC().Truncate(time.Millisecond)
	if err := s.users.UpdatePassword(ctx, u.ID, hash, changedAt); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return domain.Profile{}, err
		}
		return domain.Profile{}, apperr.Internal("update password", err)
	}
	u.PasswordHash = hash
	u.PasswordChangedAt = &changedAt
	s.log.Info("password changed", zap.String("userId", u.ID))
	return u.Profile(), nil
}

// ResetLink base?id=<id>&token=<token>；base 已带查询串时追加
func ResetLink(base, userID, token string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "id=" + url.QueryEscape(userID) + "&token=" + url.QueryEscape(token)
}
