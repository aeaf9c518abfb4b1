package handler

import (
	"net/http"
	"strconv"

	"Campus_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc      *service.UserService
	emailSvc *service.EmailService
}

func NewUserHandler(svc *service.UserService, emailSvc *service.EmailService) *UserHandler {
	return &UserHandler{svc: svc, emailSvc: emailSvc}
}

// SendCodeReq 发验证码请求体
type SendCodeReq struct {
	Email string `json:"email" binding:"required,email"`
	Scope string `json:"scope" binding:"required,oneof=register reset"`
}

// ResetReq 忘记密码请求体
type ResetReq struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,len=6"`
	NewPassword string `json:"new_password"`
}

type ChangePasswordReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// SendCode 发验证码接口
func (h *UserHandler) SendCode(c *gin.Context) {
	var req SendCodeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	if err := h.emailSvc.SendCode(req.Scope, req.Email); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// Register 注册接口：multipart 表单，证件照必传
func (h *UserHandler) Register(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	email := c.PostForm("email")
	code := c.PostForm("code")
	idPic, err := formImage(c, "id_picture", true)
	if err != nil {
		fail(c, err)
		return
	}
	userID, err := h.svc.Register(c.Request.Context(), username, password, email, code, idPic)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"user_id": userID})
}

// Login 登录接口
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	pair, err := h.svc.Login(req.Username, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"AccessToken": pair.AccessToken, "RefreshToken": pair.RefreshToken})
}

func (h *UserHandler) Logout(c *gin.Context) {
	userID, exists := currentUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	if err := h.svc.Logout(userID); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// Refresh 换取新令牌对
func (h *UserHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	pair, err := h.svc.Refresh(req.RefreshToken)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"AccessToken": pair.AccessToken, "RefreshToken": pair.RefreshToken})
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, exists := currentUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	var req ChangePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	if err := h.svc.ChangePassword(userID, req.OldPassword, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// ResetPassword 忘记密码，凭邮箱验证码重置
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req ResetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	if err := h.svc.ResetByCode(req.Email, req.Code, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// UpdateIDPicture 重传证件照：multipart 表单，id_picture 必传
func (h *UserHandler) UpdateIDPicture(c *gin.Context) {
	userID, exists := currentUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	idPic, err := formImage(c, "id_picture", true)
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.svc.UpdateIDPicture(c.Request.Context(), userID, idPic); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// moderate 审核/封禁类接口的公共骨架
func (h *UserHandler) moderate(c *gin.Context, do func(actorID, targetID uint64) error) {
	actorID, exists := currentUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return
	}
	targetID, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	if err := do(actorID, targetID); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (h *UserHandler) Approve(c *gin.Context) {
	h.moderate(c, h.svc.Approve)
}

func (h *UserHandler) Reject(c *gin.Context) {
	h.moderate(c, func(actorID, targetID uint64) error {
		return h.svc.Reject(c.Request.Context(), actorID, targetID)
	})
}

func (h *UserHandler) Ban(c *gin.Context) {
	h.moderate(c, h.svc.Ban)
}

func (h *UserHandler) Unban(c *gin.Context) {
	h.moderate(c, h.svc.Unban)
}

func (h *UserHandler) AppointModerator(c *gin.Context) {
	h.moderate(c, h.svc.AppointModerator)
}

func (h *UserHandler) DismissModerator(c *gin.Context) {
	h.moderate(c, h.svc.DismissModerator)
}

// Search 用户检索：用户名子串 + 可选站点角色
func (h *UserHandler) Search(c *gin.Context) {
	role := int64(-1)
	if v := c.Query("role"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
			return
		}
		role = parsed
	}
	result, err := h.svc.Search(c.Query("q"), role)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"matched": result.Matched, "count": result.Count, "items": result.Items})
}
