package service

import (
	"context"

	"Campus_Community/internal/lifecycle"
	"Campus_Community/internal/model"
	"Campus_Community/internal/pkg/errs"
	"Campus_Community/internal/rbac"
	"Campus_Community/internal/repository/mysql"
	"Campus_Community/internal/repository/redis"

	"go.uber.org/zap"
)

type MessageService struct {
	convRepo *mysql.ConversationRepository
	userRepo *mysql.UserRepository
	cache    *redis.ConversationCache
	log      *zap.Logger
}

func NewMessageService(lc *lifecycle.Manager, log *zap.Logger) *MessageService {
	db := lc.DB()
	return &MessageService{
		convRepo: &mysql.ConversationRepository{DB: db},
		userRepo: &mysql.UserRepository{DB: db},
		cache:    &redis.ConversationCache{},
		log:      log,
	}
}

func (s *MessageService) requireApproved(userID uint64) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user.Banned {
		return nil, errs.Forbidden("account is banned")
	}
	if user.SiteRole < int(rbac.SiteApproved) {
		return nil, errs.Forbidden("account is pending approval")
	}
	return user, nil
}

// StartConversation 打开与某用户的会话；同一对用户永远命中同一行
func (s *MessageService) StartConversation(ctx context.Context, userID, peerID uint64) (*model.Conversation, error) {
	if _, err := s.requireApproved(userID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByID(peerID); err != nil {
		return nil, err
	}
	return s.convRepo.GetOrCreate(ctx, userID, peerID)
}

// peerOf 校验参与者并返回对端；非参与者一律 NotFound，不泄露会话存在性
func peerOf(conv *model.Conversation, userID uint64) (uint64, error) {
	switch userID {
	case conv.SmallerID:
		return conv.LargerID, nil
	case conv.LargerID:
		return conv.SmallerID, nil
	default:
		return 0, errs.NotFound("conversation not found")
	}
}

// Send 发消息并累加对端未读数；计数失败只记日志不拦投递
func (s *MessageService) Send(ctx context.Context, userID, conversationID uint64, content string) (*model.Message, error) {
	if content == "" {
		return nil, errs.Invalid("content required")
	}
	if _, err := s.requireApproved(userID); err != nil {
		return nil, err
	}
	conv, err := s.convRepo.FindByID(conversationID)
	if err != nil {
		return nil, err
	}
	peerID, err := peerOf(conv, userID)
	if err != nil {
		return nil, err
	}

	msg := &model.Message{
		ConversationID: conversationID,
		SenderID:       userID,
		Content:        content,
	}
	if err := s.convRepo.CreateMessage(ctx, msg); err != nil {
		return nil, errs.Wrap(err)
	}
	if err := s.cache.IncrUnread(ctx, conversationID, peerID); err != nil {
		s.log.Warn("unread counter incr failed",
			zap.Uint64("conversation_id", conversationID),
			zap.Uint64("user_id", peerID),
			zap.Error(err))
	}
	return msg, nil
}

// Messages 倒序分页拉取，读取即视为已读
func (s *MessageService) Messages(ctx context.Context, userID, conversationID uint64, cursor uint64, limit int) ([]model.Message, uint64, error) {
	conv, err := s.convRepo.FindByID(conversationID)
	if err != nil {
		return nil, 0, err
	}
	if _, err := peerOf(conv, userID); err != nil {
		return nil, 0, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	msgs, next, err := s.convRepo.ListMessages(ctx, conversationID, cursor, limit)
	if err != nil {
		return nil, 0, errs.Wrap(err)
	}
	if err := s.cache.ClearUnread(ctx, conversationID, userID); err != nil {
		s.log.Warn("unread counter clear failed",
			zap.Uint64("conversation_id", conversationID),
			zap.Uint64("user_id", userID),
			zap.Error(err))
	}
	return msgs, next, nil
}

// ConversationView 会话列表项，带对端与未读角标
type ConversationView struct {
	ID     uint64 `json:"id"`
	PeerID uint64 `json:"peer_id"`
	Unread int64  `json:"unread"`
}

// Conversations 按最近活跃排序的会话列表
func (s *MessageService) Conversations(ctx context.Context, userID uint64, page, size int) ([]ConversationView, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}
	convs, err := s.convRepo.ListByUser(ctx, userID, (page-1)*size, size)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	views := make([]ConversationView, 0, len(convs))
	for _, conv := range convs {
		peerID, err := peerOf(&conv, userID)
		if err != nil {
			continue
		}
		unread, err := s.cache.GetUnread(ctx, conv.ID, userID)
		if err != nil {
			unread = 0
		}
		views = append(views, ConversationView{ID: conv.ID, PeerID: peerID, Unread: unread})
	}
	return views, nil
}
