package ez

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"

	"go-gin-article-api/internal/core/apperr"
)

var (
	transOnce sync.Once
	trans     ut.Translator
)

// translator 给 gin 的校验器注册英文提示与 json 字段名，只执行一次
func translator() ut.Translator {
	transOnce.Do(func() {
		loc := en.New()
		trans, _ = ut.New(loc, loc).GetTranslator("en")
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(fieldName)
		_ = entrans.RegisterDefaultTranslations(v, trans)
	})
	return trans
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// BindError 把绑定/校验错误转成带字段明细的 Validation 错误
func BindError(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		t := translator()
		fields := make([]apperr.FieldError, 0, len(ve))
		for _, fe := range ve {
			fields = append(fields, apperr.FieldError{Path: fe.Field(), Message: fe.Translate(t)})
		}
		return apperr.Validation("validation error", fields...)
	}
	var se *json.SyntaxError
	var te *json.UnmarshalTypeError
	switch {
	case errors.As(err, &te):
		return apperr.Validation("validation error", apperr.FieldError{Path: te.Field, Message: "invalid type"})
	case errors.As(err, &se), errors.Is(err, io.EOF):
		return apperr.Validation("invalid request body")
	}
	return apperr.Validation(err.Error())
}
