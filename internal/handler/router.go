package handler

import "github.com/gin-gonic/gin"

// Routes 路由依赖
type Routes struct {
	Auth          gin.HandlerFunc // JWT 中间件
	Active        gin.HandlerFunc // 账号可用校验，可以为 nil
	Users         *UserHandler
	Friends       *FriendHandler
	Notifications *NotificationHandler
	Health        *HealthHandler
	WebSocket     gin.HandlerFunc // 可以为 nil
}

// authed 需要登录且账号可用的中间件链
func (rt *Routes) authed() []gin.HandlerFunc {
	if rt.Active == nil {
		return []gin.HandlerFunc{rt.Auth}
	}
	return []gin.HandlerFunc{rt.Auth, rt.Active}
}

// Register 绑定全部路由
func (rt *Routes) Register(router *gin.Engine) {
	// 完整url为：http://localhost:8080/health
	router.GET("/health", rt.Health.Check)

	v1 := router.Group("/api/v1")
	{
		users := v1.Group("/users")
		{
			// 公开接口（无需认证）
			users.POST("/register", rt.Users.Register)
			users.POST("/login", rt.Users.Login)

			authUsers := users.Group("")
			authUsers.Use(rt.Auth)
			{
				authUsers.GET("/profile", rt.Users.GetProfile)
				authUsers.POST("/logout", rt.Users.Logout)
			}
		}

		friends := v1.Group("/friends")
		friends.Use(rt.authed()...)
		{
			friends.GET("/check/:id", rt.Friends.CheckStatus)
			friends.POST("/request", rt.Friends.SendRequest)
			friends.POST("/accept", rt.Friends.AcceptRequest)
			friends.DELETE("/remove/:id", rt.Friends.Remove)
			friends.GET("/list", rt.Friends.ListFriends)
			friends.GET("/pending", rt.Friends.ListPending)
			friends.GET("/sent", rt.Friends.ListSent)
			friends.GET("/search", rt.Friends.Search)
		}

		notifications := v1.Group("/community/notifications")
		notifications.Use(rt.authed()...)
		{
			notifications.GET("", rt.Notifications.List)
			notifications.GET("/unread-count", rt.Notifications.UnreadCount)
			notifications.PUT("/mark-read", rt.Notifications.MarkAllRead)
		}
	}

	// WebSocket路由，令牌在握手参数中校验
	if rt.WebSocket != nil {
		router.GET("/ws", rt.WebSocket)
	}
}
