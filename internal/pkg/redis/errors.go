package redis

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

// ErrNil 快照键不存在
var ErrNil = redis.Nil

// IsNil 判断是否是键不存在（首次启动、快照已过期）
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}
