package mysql

import (
	"context"
	"errors"

	"Campus_Community/internal/model"
	"Campus_Community/internal/pkg/errs"

	"gorm.io/gorm"
)

type ConversationRepository struct {
	DB *gorm.DB
}

// GetOrCreate 按归一化无序对查找会话，不存在则创建。
// 先查后插只是省掉常见路径上的冲突；并发首次互发时真正兜底的是
// uk_conv_pair 唯一索引，撞上冲突就回头再查一次。
func (r *ConversationRepository) GetOrCreate(ctx context.Context, a, b uint64) (*model.Conversation, error) {
	if a == b {
		return nil, errs.Invalid("cannot start a conversation with yourself")
	}
	smaller, larger := model.PairKey(a, b)

	var conv model.Conversation
	err := r.DB.WithContext(ctx).
		Where("smaller_id = ? AND larger_id = ?", smaller, larger).
		First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conv = model.Conversation{SmallerID: smaller, LargerID: larger}
	err = r.DB.WithContext(ctx).Create(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// 对方同时发起，行已经在了
		var existing model.Conversation
		if err := r.DB.WithContext(ctx).
			Where("smaller_id = ? AND larger_id = ?", smaller, larger).
			First(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
	return nil, err
}

func (r *ConversationRepository) FindByID(id uint64) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.DB.First(&conv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("conversation not found")
	}
	return &conv, err
}

func (r *ConversationRepository) CreateMessage(ctx context.Context, msg *model.Message) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		// 会话 updated_at 即最近活跃时间，列表按它排序
		return tx.Model(&model.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
	})
}

// ListMessages id 游标倒序分页，limit+1 探测下一页
func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID uint64, cursor uint64, limit int) ([]model.Message, uint64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	q := r.DB.WithContext(ctx).Where("conversation_id = ?", conversationID)
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}
	var rows []model.Message
	if err := q.Order("id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	var next uint64
	if len(rows) > limit {
		next = rows[limit-1].ID
		rows = rows[:limit]
	}
	return rows, next, nil
}

// ListByUser 用户参与的全部会话，最近活跃在前
func (r *ConversationRepository) ListByUser(ctx context.Context, userID uint64, offset, limit int) ([]model.Conversation, error) {
	var list []model.Conversation
	err := r.DB.WithContext(ctx).
		Where("smaller_id = ? OR larger_id = ?", userID, userID).
		Order("updated_at DESC").
		Offset(offset).Limit(limit).
		Find(&list).Error
	return list, err
}
