package notify

import (
	"context"
	"time"

	"Campus_Community/internal/model"
	"Campus_Community/internal/pkg"
	"Campus_Community/internal/repository/mysql"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Sender func(ctx context.Context, ob *model.NotifyOutbox) error

// Relayer 通知事件投递器：轮询 outbox 表，把待发事件交给 sender
type Relayer struct {
	repo      *mysql.OutboxRepository
	batchSize int
	interval  time.Duration
	sender    Sender
	log       *zap.Logger
}

func NewRelayer(db *gorm.DB, sender Sender, log *zap.Logger) *Relayer {
	return &Relayer{
		repo:      &mysql.OutboxRepository{DB: db},
		batchSize: 200,
		interval:  time.Second,
		sender:    sender,
		log:       log,
	}
}

// Run 启动器，ctx 取消即退出
func (r *Relayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.drainOnce(ctx)
		}
	}
}

// drainOnce 按批读取待发事件逐条投递；失败的记下重试计数继续
func (r *Relayer) drainOnce(ctx context.Context) {
	rows, err := r.repo.List(ctx, r.batchSize)
	if err != nil {
		r.log.Error("outbox query failed", zap.Error(err))
		return
	}
	for i := range rows {
		ob := rows[i]
		if err = r.sender(ctx, &ob); err != nil {
			r.log.Warn("outbox send failed",
				zap.Uint64("id", ob.ID),
				zap.String("event", ob.EventType),
				zap.Error(err))
			_ = r.repo.MarkFailed(ctx, ob.ID)
			continue
		}
		_ = r.repo.MarkSent(ctx, ob.ID)
	}
}

// KafkaSender 按目标用户分区投递，同一收件人保序
func KafkaSender(producer *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ob *model.NotifyOutbox) error {
		return producer.Send(ctx, pkg.MakeKeyFromID(ob.TargetID), []byte(ob.Payload))
	}
}

// LogSender 没配 kafka 时的兜底 sender，只打日志
func LogSender(log *zap.Logger) Sender {
	return func(ctx context.Context, ob *model.NotifyOutbox) error {
		log.Info("notify event",
			zap.String("event", ob.EventType),
			zap.Uint64("actor", ob.ActorID),
			zap.Uint64("target", ob.TargetID),
			zap.Uint64("group", ob.GroupID))
		return nil
	}
}
