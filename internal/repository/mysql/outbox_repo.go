package mysql

import (
	"context"
	"encoding/json"
	"time"

	"Campus_Community/internal/model"

	"gorm.io/gorm"
)

type OutboxRepository struct {
	DB *gorm.DB
}

// InsertEvent 业务事务内落通知事件；与业务写库同生共死
func InsertEvent(tx *gorm.DB, event string, actorID, targetID, groupID uint64) error {
	payload, _ := json.Marshal(map[string]any{
		"event_time": time.Now().UTC().Format(time.RFC3339Nano),
		"actor":      actorID,
		"target":     targetID,
		"group":      groupID,
	})
	ob := &model.NotifyOutbox{
		EventType: event,
		ActorID:   actorID,
		TargetID:  targetID,
		GroupID:   groupID,
		Payload:   string(payload),
		Status:    0,
	}
	return tx.Create(ob).Error
}

func (r *OutboxRepository) List(ctx context.Context, batchSize int) ([]model.NotifyOutbox, error) {
	var list []model.NotifyOutbox
	if err := r.DB.WithContext(ctx).
		Where("status = 0").
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// MarkFailed 投递失败累加重试计数
func (r *OutboxRepository) MarkFailed(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.NotifyOutbox{}).Where("id = ?", id).
		Updates(map[string]any{"status": 2, "retry": gorm.Expr("retry + 1")}).Error
}

func (r *OutboxRepository) MarkSent(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.NotifyOutbox{}).Where("id = ?", id).
		Update("status", 1).Error
}
