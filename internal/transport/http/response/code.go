package response

import "net/http"

// 各状态码的默认提示语；业务错误优先使用 apperr 携带的消息
var defaultMessages = map[int]string{
	http.StatusOK:                    "OK",
	http.StatusCreated:               "Created",
	http.StatusBadRequest:            "Bad Request",
	http.StatusUnauthorized:          "you are not authorized",
	http.StatusForbidden:             "forbidden",
	http.StatusNotFound:              "Not Found",
	http.StatusConflict:              "Conflict",
	http.StatusRequestEntityTooLarge: "request body too large",
	http.StatusTooManyRequests:       "too many requests",
	http.StatusInternalServerError:   "internal server error",
	http.StatusServiceUnavailable:    "server busy",
	http.StatusGatewayTimeout:        "request timeout",
}

// MessageFor 未登记的状态码退回 http.StatusText
func MessageFor(status int) string {
	if m, ok := defaultMessages[status]; ok {
		return m
	}
	return http.StatusText(status)
}
