package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-gin-article-api/internal/core/apperr"
	"go-gin-article-api/internal/core/config"
)

type Purpose string

const (
	PurposeAccess  Purpose = "access"
	PurposeRefresh Purpose = "refresh"
	PurposeReset   Purpose = "password-reset"
)

// Identity 令牌携带的身份信息
type Identity struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	// IssuedAtNano 纳秒级签发时间；标准 iat 只有秒级
	IssuedAtNano int64 `json:"iatn,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() Identity { return Identity{Email: c.Email, Name: c.Name} }

// IssuedBefore 令牌是否早于 t 签发；两种签发时间都缺失时视为早于。
// 没有 iatn 的令牌退回到秒级 iat，t 同样按秒截断
func (c *Claims) IssuedBefore(t time.Time) bool {
	switch {
	case c.IssuedAtNano != 0:
		return time.Unix(0, c.IssuedAtNano).Before(t)
	case c.IssuedAt != nil:
		return c.IssuedAt.Time.Before(t.Truncate(time.Second))
	}
	return true
}

type JWTer struct {
	Purpose Purpose
	Secret  []byte
	Issuer  string
	TTL     time.Duration
	Leeway  time.Duration
	Now     func() time.Time // nil = time.Now
}

func (j *JWTer) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

func (j *JWTer) Issue(id Identity) (string, error) {
	now := j.now()
	claims := Claims{
		Email:        id.Email,
		Name:         id.Name,
		IssuedAtNano: now.UnixNano(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			Audience:  jwt.ClaimStrings{string(j.Purpose)},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(j.Secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", j.Purpose, err)
	}
	return s, nil
}

// Parse 校验签名、过期、签发方与用途；失败统一返回 Unauthorized，具体原因只保留在 Err 里
func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg %v", token.Header["alg"])
		}
		return j.Secret, nil
	},
		jwt.WithIssuer(j.Issuer),
		jwt.WithAudience(string(j.Purpose)),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(j.Leeway),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.KindUnauthorized, Msg: "unauthorized", Err: err}
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid {
		return c, nil
	}
	return nil, apperr.Unauthorized("unauthorized")
}

// Keyring 三种用途各自独立的签名器
type Keyring struct {
	Access  *JWTer
	Refresh *JWTer
	Reset   *JWTer
}

func NewKeyring(c config.JWT) (*Keyring, error) {
	mk := func(p Purpose, k config.TokenKey) (*JWTer, error) {
		ttl, err := ParseTTL(k.TTL)
		if err != nil {
			return nil, fmt.Errorf("jwt %s ttl: %w", p, err)
		}
		return &JWTer{Purpose: p, Secret: []byte(k.Secret), Issuer: c.Issuer, TTL: ttl}, nil
	}
	access, err := mk(PurposeAccess, c.Access)
	if err != nil {
		return nil, err
	}
	refresh, err := mk(PurposeRefresh, c.Refresh)
	if err != nil {
		return nil, err
	}
	reset, err := mk(PurposeReset, c.Reset)
	if err != nil {
		return nil, err
	}
	return &Keyring{Access: access, Refresh: refresh, Reset: reset}, nil
}

func (k *Keyring) For(p Purpose) *JWTer {
	switch p {
	case PurposeAccess:
		return k.Access
	case PurposeRefresh:
		return k.Refresh
	case PurposeReset:
		return k.Reset
	}
	return nil
}
