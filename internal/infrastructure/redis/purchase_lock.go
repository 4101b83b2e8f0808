package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockNotAcquired = errors.New("ロックを取得できませんでした")
	ErrLockNotOwned    = errors.New("ロックの所有者ではありません")
)

// PurchaseLock はイベント単位の購入直列化に使う補助ロック
// 在庫の正しさはDBトランザクションの行ロックが保証するため、
// このロックはホットな行へのトランザクション競合を減らす目的でのみ使う
type PurchaseLock struct {
	client *redis.Client
	key    string
	value  string
	ttl    time.Duration
}

// LockManager は購入ロックを管理する
type LockManager struct {
	client *redis.Client
}

// NewLockManager は新しいLockManagerを作成する
func NewLockManager(client *redis.Client) *LockManager {
	return &LockManager{client: client}
}

// AcquireEventLock はイベントIDに対するロックを取得する
func (m *LockManager) AcquireEventLock(ctx context.Context, eventID int64, ttl time.Duration) (*PurchaseLock, error) {
	lockKey := fmt.Sprintf("lock:event:%d", eventID)
	lockValue := uuid.New().String()

	// SetNX: キーが存在しない場合のみ設定
	ok, err := m.client.SetNX(ctx, lockKey, lockValue, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("ロック取得に失敗: %w", err)
	}
	if !ok {
		return nil, ErrLockNotAcquired
	}

	return &PurchaseLock{
		client: m.client,
		key:    lockKey,
		value:  lockValue,
		ttl:    ttl,
	}, nil
}

// AcquireEventLockWithRetry はリトライ付きでロックを取得する
func (m *LockManager) AcquireEventLockWithRetry(ctx context.Context, eventID int64, ttl time.Duration, maxRetries int, retryDelay time.Duration) (*PurchaseLock, error) {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		lock, err := m.AcquireEventLock(ctx, eventID, ttl)
		if err == nil {
			return lock, nil
		}
		lastErr = err
		if !errors.Is(err, ErrLockNotAcquired) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return nil, lastErr
}

// Release はロックを解放する
// Luaスクリプトで所有者確認と削除をアトミックに実行する
func (l *PurchaseLock) Release(ctx context.Context) error {
	script := `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`
	result, err := l.client.Eval(ctx, script, []string{l.key}, l.value).Int()
	if err != nil {
		return fmt.Errorf("ロック解放に失敗: %w", err)
	}
	if result == 0 {
		return ErrLockNotOwned
	}
	return nil
}
