package main

import (
	"fmt"
	"log"
	"os"

	"nightplans-server/routes"
	"nightplans-server/storage"
	"nightplans-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	storage.InitializeDB()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	// JWT verifiers
	resetTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("EMAIL_TOKEN_SECRET")))
	resetTokenVerifier.WithDefaultBlocklist()
	resetTokenVerifierMiddleware := resetTokenVerifier.Verify(func() interface{} {
		return new(utils.ForgotPasswordToken)
	})

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Post("/google", routes.GoogleLoginOrSignUp)
		user.Post("/apple", routes.AppleLoginOrSignUp)
		user.Post("/forgotpassword", routes.ForgotPassword)
		user.Post("/resetpassword", resetTokenVerifierMiddleware, routes.ResetPassword)
		user.Get("/me", accessTokenVerifierMiddleware, routes.Me)
		user.Get("/search", accessTokenVerifierMiddleware, routes.SearchUsers)
		user.Patch("/{id}/pushtoken", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.AlterPushToken)
		user.Patch("/{id}/settings/notifications", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.AllowsNotifications)
		user.Patch("/{id}/avatar", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.UpdateAvatar)
		user.Get("/{id:uint}/profile", routes.GetUserProfile)
		user.Get("/{id:uint}/reviews", routes.GetUserReviews)
	}

	// Aliases used by the mobile client's auth screens
	auth := app.Party("/api/auth")
	{
		auth.Post("/signup", routes.Register)
		auth.Post("/login", routes.Login)
		auth.Post("/forgot-password", routes.ForgotPassword)
		auth.Get("/me", accessTokenVerifierMiddleware, routes.Me)
	}

	plans := app.Party("/api/plans")
	{
		plans.Get("/", routes.GetPlans)
		plans.Post("/", accessTokenVerifierMiddleware, routes.CreatePlan)
		plans.Get("/my-requests", accessTokenVerifierMiddleware, routes.GetMyJoinRequests)
		plans.Get("/{id:uint}", routes.GetPlanByID)
		plans.Patch("/{id:uint}", accessTokenVerifierMiddleware, routes.UpdatePlan)
		plans.Delete("/{id:uint}", accessTokenVerifierMiddleware, routes.DeletePlan)
		plans.Get("/{id:uint}/attendees", routes.GetPlanAttendees)
		plans.Post("/{id:uint}/join", accessTokenVerifierMiddleware, routes.RequestToJoinPlan)
		plans.Get("/{id:uint}/requests", accessTokenVerifierMiddleware, routes.GetPlanJoinRequests)
		plans.Post("/requests/{requestID:uint}/respond", accessTokenVerifierMiddleware, routes.RespondToJoinRequest)
	}

	chats := app.Party("/api/chats")
	{
		chats.Post("/start-direct", accessTokenVerifierMiddleware, routes.StartDirectChat)
		chats.Get("/", accessTokenVerifierMiddleware, routes.GetChats)
		chats.Get("/{id:uint}", accessTokenVerifierMiddleware, routes.GetChatMeta)
		chats.Get("/{id:uint}/messages", accessTokenVerifierMiddleware, routes.GetChatMessages)
		chats.Post("/{id:uint}/messages", accessTokenVerifierMiddleware, routes.SendChatMessage)
		chats.Post("/{id:uint}/typing", accessTokenVerifierMiddleware, routes.Typing)
		chats.Get("/{id:uint}/typing", accessTokenVerifierMiddleware, routes.ListTyping)
	}

	notifications := app.Party("/api/notifications")
	{
		notifications.Get("/", accessTokenVerifierMiddleware, routes.GetNotifications)
		notifications.Get("/unread-count", accessTokenVerifierMiddleware, routes.GetUnreadNotificationCount)
		notifications.Patch("/read-all", accessTokenVerifierMiddleware, routes.MarkAllNotificationsRead)
		notifications.Patch("/{id:uint}/read", accessTokenVerifierMiddleware, routes.MarkNotificationRead)
		notifications.Delete("/{id:uint}", accessTokenVerifierMiddleware, routes.DeleteNotification)
	}

	connections := app.Party("/api/connections")
	{
		connections.Post("/{id:uint}/follow", accessTokenVerifierMiddleware, routes.FollowUser)
		connections.Delete("/{id:uint}/follow", accessTokenVerifierMiddleware, routes.UnfollowUser)
		connections.Get("/{id:uint}/followers", accessTokenVerifierMiddleware, routes.GetFollowers)
		connections.Get("/{id:uint}/following", accessTokenVerifierMiddleware, routes.GetFollowing)
	}

	reviews := app.Party("/api/reviews")
	{
		reviews.Post("/", accessTokenVerifierMiddleware, routes.CreateUserReview)
		reviews.Get("/user/{id:uint}", routes.GetUserReviews)
	}

	app.Post("/api/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := "0.0.0.0:" + port

	fmt.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
