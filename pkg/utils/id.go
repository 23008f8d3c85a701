package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewID 32 位十六进制主键（uuid 去掉连字符），与 varchar(32) 列对应
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
