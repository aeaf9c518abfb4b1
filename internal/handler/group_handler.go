package handler

import (
	"net/http"

	"Campus_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type GroupHandler struct {
	svc *service.GroupService
}

func NewGroupHandler(svc *service.GroupService) *GroupHandler {
	return &GroupHandler{svc: svc}
}

// Create 建群接口：multipart 表单，头像可选
func (h *GroupHandler) Create(c *gin.Context) {
	userID, exists := currentUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	name := c.PostForm("name")
	desc := c.PostForm("description")
	avatar, err := formImage(c, "avatar", false)
	if err != nil {
		fail(c, err)
		return
	}
	groupID, err := h.svc.Create(c.Request.Context(), userID, name, desc, avatar)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"group_id": groupID})
}

func (h *GroupHandler) Join(c *gin.Context) {
	userID, exists := currentUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	groupID, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	var req struct {
		JoinCode string `json:"join_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	if err := h.svc.Join(userID, groupID, req.JoinCode); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (h *GroupHandler) Leave(c *gin.Context) {
	userID, exists := currentUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	groupID, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.svc.Leave(userID, groupID); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// memberOp 对群内某个成员的操作骨架（踢人/升降级/移交）
func (h *GroupHandler) memberOp(c *gin.Context, do func(actorID, groupID, targetID uint64) error) {
	actorID, exists := currentUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	groupID, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	targetID, err := pathID(c, "uid")
	if err != nil {
		fail(c, err)
		return
	}
	if err := do(actorID, groupID, targetID); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (h *GroupHandler) Kick(c *gin.Context) {
	h.memberOp(c, func(actorID, groupID, targetID uint64) error {
		return h.svc.Kick(c.Request.Context(), actorID, groupID, targetID)
	})
}

func (h *GroupHandler) Promote(c *gin.Context) {
	h.memberOp(c, h.svc.Promote)
}

func (h *GroupHandler) Demote(c *gin.Context) {
	h.memberOp(c, h.svc.Demote)
}

func (h *GroupHandler) TransferAdmin(c *gin.Context) {
	h.memberOp(c, h.svc.TransferAdmin)
}

func (h *GroupHandler) Invite(c *gin.Context) {
	h.memberOp(c, func(actorID, groupID, targetID uint64) error {
		return h.svc.Invite(c.Request.Context(), actorID, groupID, targetID)
	})
}

// UpdateAvatar 更换群头像：multipart 表单，avatar 必传
func (h *GroupHandler) UpdateAvatar(c *gin.Context) {
	userID, exists := currentUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	groupID, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	avatar, err := formImage(c, "avatar", true)
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.svc.UpdateAvatar(c.Request.Context(), userID, groupID, avatar); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (h *GroupHandler) Destroy(c *gin.Context) {
	userID, exists := currentUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	groupID, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.svc.Destroy(c.Request.Context(), userID, groupID); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.svc.List(queryInt(c, "page", 1), queryInt(c, "size", 20))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": groups})
}

func (h *GroupHandler) Members(c *gin.Context) {
	groupID, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	members, err := h.svc.Members(groupID, queryInt(c, "page", 1), queryInt(c, "size", 50))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": members})
}
