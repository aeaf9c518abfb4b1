package handler

import (
	"net/http"
	"strconv"

	"Campus_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type ThreadHandler struct {
	svc *service.ThreadService
}

func NewThreadHandler(svc *service.ThreadService) *ThreadHandler {
	return &ThreadHandler{svc: svc}
}

// Create 发主题：multipart 表单，配图可选
func (h *ThreadHandler) Create(c *gin.Context) {
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
	image, err := formImage(c, "image", false)
	if err != nil {
		fail(c, err)
		return
	}
	threadID, err := h.svc.CreateThread(c.Request.Context(), userID, groupID,
		c.PostForm("title"), c.PostForm("content"), image)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"thread_id": threadID})
}

// Reply 回帖，配图可选
func (h *ThreadHandler) Reply(c *gin.Context) {
	userID, exists := currentUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	threadID, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	image, err := formImage(c, "image", false)
	if err != nil {
		fail(c, err)
		return
	}
	postID, err := h.svc.Reply(c.Request.Context(), userID, threadID, c.PostForm("content"), image)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"post_id": postID})
}

func (h *ThreadHandler) Destroy(c *gin.Context) {
	userID, exists := currentUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	threadID, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.svc.DestroyThread(c.Request.Context(), userID, threadID); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (h *ThreadHandler) DeletePost(c *gin.Context) {
	userID, exists := currentUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	postID, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.svc.DeletePost(c.Request.Context(), userID, postID); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// ListByGroup 群内主题游标翻页
func (h *ThreadHandler) ListByGroup(c *gin.Context) {
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
	lastID, _ := strconv.ParseUint(c.Query("last_id"), 10, 64)
	lastCreatedAt, _ := strconv.ParseInt(c.Query("last_created_at"), 10, 64)
	threads, err := h.svc.ListByGroup(userID, groupID, lastID, lastCreatedAt, queryInt(c, "size", 20))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": threads})
}

func (h *ThreadHandler) Posts(c *gin.Context) {
	userID, exists := currentUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	threadID, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	posts, err := h.svc.Posts(userID, threadID, queryInt(c, "page", 1), queryInt(c, "size", 50))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": posts})
}

// Search 群内按标题检索
func (h *ThreadHandler) Search(c *gin.Context) {
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
	result, err := h.svc.Search(userID, groupID, c.Query("q"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"matched": result.Matched, "count": result.Count, "items": result.Items})
}
