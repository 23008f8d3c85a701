package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// errAbsent load 没有结果时中断写缓存
var errAbsent = errors.New("cache: absent")

// GetOrLoadJSON 以 JSON 形式缓存 load 的结果。
// load 返回 nil 时不写缓存，调用方得到 (nil, nil)；缓存内容无法解码时删除该键并回源一次
func GetOrLoadJSON[T any](
	c *Cache,
	ctx context.Context,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (*T, error),
) (*T, error) {
	fill := func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, errAbsent
		}
		return json.Marshal(v)
	}

	b, err := c.GetOrLoad(ctx, key, ttl, fill)
	if errors.Is(err, errAbsent) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out T
	if err := json.Unmarshal(b, &out); err == nil {
		return &out, nil
	}
	_ = c.Delete(ctx, key)
	b, err = c.GetOrLoad(ctx, key, ttl, fill)
	switch {
	case errors.Is(err, errAbsent):
		return nil, nil
	case err != nil:
		return nil, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
