package ez

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// bindJSON 解码后先去空白再校验，长度约束针对的是去空白后的值
func bindJSON(c *gin.Context, obj any) error {
	if err := json.NewDecoder(c.Request.Body).Decode(obj); err != nil {
		return err
	}
	trimTagged(obj)
	return binding.Validator.ValidateStruct(obj)
}

// trimTagged 处理带 `ez:"trim"` 的 string 与 []string 字段；密码等字段不打标签即保持原样
func trimTagged(obj any) {
	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return
	}
	rv = rv.Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() || f.Tag.Get("ez") != "trim" {
			continue
		}
		fv := rv.Field(i)
		switch {
		case fv.Kind() == reflect.String:
			fv.SetString(strings.TrimSpace(fv.String()))
		case fv.Kind() == reflect.Slice && fv.Type().Elem().Kind() == reflect.String:
			for j := 0; j < fv.Len(); j++ {
				e := fv.Index(j)
				e.SetString(strings.TrimSpace(e.String()))
			}
		}
	}
}
