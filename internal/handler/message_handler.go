package handler

import (
	"net/http"
	"strconv"

	"Campus_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	svc *service.MessageService
}

func NewMessageHandler(svc *service.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

// Start 打开与某个用户的私信会话
func (h *MessageHandler) Start(c *gin.Context) {
	userID, exists := currentUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	var req struct {
		PeerID uint64 `json:"peer_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	conv, err := h.svc.StartConversation(c.Request.Context(), userID, req.PeerID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"conversation_id": conv.ID})
}

func (h *MessageHandler) Send(c *gin.Context) {
	userID, exists := currentUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	convID, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	msg, err := h.svc.Send(c.Request.Context(), userID, convID, req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message_id": msg.ID})
}

// Messages 倒序游标翻页
func (h *MessageHandler) Messages(c *gin.Context) {
	userID, exists := currentUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	convID, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	cursor, _ := strconv.ParseUint(c.Query("cursor"), 10, 64)
	msgs, next, err := h.svc.Messages(c.Request.Context(), userID, convID, cursor, queryInt(c, "size", 50))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": msgs, "next_cursor": next})
}

func (h *MessageHandler) Conversations(c *gin.Context) {
	userID, exists := currentUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	views, err := h.svc.Conversations(c.Request.Context(), userID, queryInt(c, "page", 1), queryInt(c, "size", 20))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": views})
}
