package router

import (
	"Campus_Community/internal/handler"
	"Campus_Community/internal/middleware"
	"Campus_Community/internal/pkg"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	User    *handler.UserHandler
	Group   *handler.GroupHandler
	Listing *handler.ListingHandler
	Thread  *handler.ThreadHandler
	Message *handler.MessageHandler
}

func InitRouter(h Handlers, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), pkg.AccessLog(log))

	// 未登录接口单独限速，防验证码轰炸和撞库
	public := r.Group("/api")
	public.Use(middleware.RateLimitPerIP(5, 10))
	{
		public.POST("/email/code", h.User.SendCode)
		public.POST("/user/register", h.User.Register)
		public.POST("/user/login", h.User.Login)
		public.POST("/user/reset", h.User.ResetPassword)
		public.POST("/token/refresh", h.User.Refresh)
	}

	// 登录态接口
	auth := r.Group("/api")
	auth.Use(middleware.AuthMiddleware())

	// 用户相关接口
	userGroup := auth.Group("/user")
	{
		userGroup.POST("/logout", h.User.Logout)
		userGroup.POST("/change-password", h.User.ChangePassword)
		userGroup.POST("/id-picture", h.User.UpdateIDPicture)
		userGroup.GET("/search", h.User.Search)
	}

	// 站务审核相关接口
	adminGroup := auth.Group("/admin/user")
	{
		adminGroup.POST("/:id/approve", h.User.Approve)
		adminGroup.POST("/:id/reject", h.User.Reject)
		adminGroup.POST("/:id/ban", h.User.Ban)
		adminGroup.POST("/:id/unban", h.User.Unban)
		adminGroup.POST("/:id/appoint", h.User.AppointModerator)
		adminGroup.POST("/:id/dismiss", h.User.DismissModerator)
	}

	// 群组相关接口
	groupGroup := auth.Group("/group")
	{
		groupGroup.POST("/create", h.Group.Create)
		groupGroup.GET("/list", h.Group.List)
		groupGroup.POST("/:id/join", h.Group.Join)
		groupGroup.POST("/:id/leave", h.Group.Leave)
		groupGroup.POST("/:id/avatar", h.Group.UpdateAvatar)
		groupGroup.DELETE("/:id", h.Group.Destroy)
		groupGroup.GET("/:id/members", h.Group.Members)
		groupGroup.POST("/:id/members/:uid/kick", h.Group.Kick)
		groupGroup.POST("/:id/members/:uid/promote", h.Group.Promote)
		groupGroup.POST("/:id/members/:uid/demote", h.Group.Demote)
		groupGroup.POST("/:id/members/:uid/transfer", h.Group.TransferAdmin)
		groupGroup.POST("/:id/members/:uid/invite", h.Group.Invite)
		groupGroup.POST("/:id/thread", h.Thread.Create)
		groupGroup.GET("/:id/threads", h.Thread.ListByGroup)
		groupGroup.GET("/:id/threads/search", h.Thread.Search)
	}

	// 帖子相关接口
	threadGroup := auth.Group("/thread")
	{
		threadGroup.POST("/:id/reply", h.Thread.Reply)
		threadGroup.GET("/:id/posts", h.Thread.Posts)
		threadGroup.DELETE("/:id", h.Thread.Destroy)
	}
	postGroup := auth.Group("/post")
	{
		postGroup.DELETE("/:id", h.Thread.DeletePost)
	}

	// 商品相关接口
	listingGroup := auth.Group("/listing")
	{
		listingGroup.POST("/create", h.Listing.Create)
		listingGroup.GET("/categories", h.Listing.Categories)
		listingGroup.GET("/search", h.Listing.Search)
		listingGroup.GET("/seller/:id", h.Listing.BySeller)
		listingGroup.GET("/:id", h.Listing.Get)
		listingGroup.DELETE("/:id", h.Listing.Destroy)
	}

	// 私信相关接口
	dmGroup := auth.Group("/dm")
	{
		dmGroup.POST("/start", h.Message.Start)
		dmGroup.GET("/conversations", h.Message.Conversations)
		dmGroup.POST("/:id/send", h.Message.Send)
		dmGroup.GET("/:id/messages", h.Message.Messages)
	}

	return r
}
