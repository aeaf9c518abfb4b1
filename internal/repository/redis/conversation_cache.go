package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	UnreadPrefix = "dm:unread"
	UnreadExpire = 60 * 60 * 24 * 30
)

// ConversationCache 私信未读计数：按 (会话, 用户) 维度累加，
// 读会话接口清零。缓存丢失只影响角标数字，不影响消息本身。
type ConversationCache struct{}

func unreadKey(conversationID, userID uint64) string {
	return fmt.Sprintf("%s:%d:%d", UnreadPrefix, conversationID, userID)
}

func (c *ConversationCache) IncrUnread(ctx context.Context, conversationID, userID uint64) error {
	key := unreadKey(conversationID, userID)
	pipe := Client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, time.Second*UnreadExpire)
	if _, err := pipe.Exec(ctx); err != nil {
		return ErrRedisUnavailable
	}
	return nil
}

func (c *ConversationCache) ClearUnread(ctx context.Context, conversationID, userID uint64) error {
	if err := Client.Del(ctx, unreadKey(conversationID, userID)).Err(); err != nil {
		return ErrRedisUnavailable
	}
	return nil
}

func (c *ConversationCache) GetUnread(ctx context.Context, conversationID, userID uint64) (int64, error) {
	n, err := Client.Get(ctx, unreadKey(conversationID, userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, ErrRedisUnavailable
	}
	return n, nil
}
