package data

import (
	"context"
	"fmt"
	"time"

	"github.com/lk2023060901/ai-notebook-backend/internal/pkg/redis"
)

// KV 快照所需的最小键值操作，*redis.Client 满足该接口
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error
	Rename(ctx context.Context, key, newKey string) error
}

// RedisPersister 把快照保存在一个 Redis 键中
type RedisPersister struct {
	kv  KV
	key string
	now func() time.Time
}

func NewRedisPersister(kv KV, key string) *RedisPersister {
	return &RedisPersister{kv: kv, key: key, now: time.Now}
}

// Load 键不存在时返回空快照；内容损坏时把键重命名为 <key>.bak_<unix>
func (p *RedisPersister) Load(ctx context.Context) (*Snapshot, error) {
	raw, err := p.kv.Get(ctx, p.key)
	if redis.IsNil(err) {
		return NewSnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot key %s: %w", p.key, err)
	}

	snap, err := decodeSnapshot(raw)
	if err != nil {
		backup := fmt.Sprintf("%s.bak_%d", p.key, p.now().Unix())
		if renameErr := p.kv.Rename(ctx, p.key, backup); renameErr != nil {
			return nil, fmt.Errorf("%w (backup failed: %v)", err, renameErr)
		}
		return nil, fmt.Errorf("%w (moved to %s)", err, backup)
	}
	return snap, nil
}

func (p *RedisPersister) Save(ctx context.Context, snap *Snapshot) error {
	raw, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	if err := p.kv.Set(ctx, p.key, raw, 0); err != nil {
		return fmt.Errorf("write snapshot key %s: %w", p.key, err)
	}
	return nil
}
