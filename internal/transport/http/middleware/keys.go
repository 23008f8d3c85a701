package middleware

// gin.Context 中由 AuthJWT 写入的键
const (
	KeyUserID = "userId"
	KeyEmail  = "email"
	KeyName   = "name"
	KeyRole   = "role"
)

// 登录成功后写入的 Cookie 名
const (
	CookieAccessToken  = "accessToken"
	CookieRefreshToken = "refreshToken"
)
