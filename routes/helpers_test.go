package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"nightplans-server/models"
	"nightplans-server/storage"
	"nightplans-server/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"github.com/stretchr/testify/require"
)

// buildTestApp wires a fresh in-memory database, a miniredis instance and the
// same route tree main registers.
func buildTestApp(t *testing.T) *iris.Application {
	t.Helper()

	os.Setenv("ACCESS_TOKEN_SECRET", "testaccesssecret")
	os.Setenv("REFRESH_TOKEN_SECRET", "testrefreshsecret")
	os.Setenv("EMAIL_TOKEN_SECRET", "testemailsecret")

	_, err := storage.InitializeTestDB()
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	storage.Redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	app := iris.New()
	app.Validator = validator.New()

	resetTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("EMAIL_TOKEN_SECRET")))
	resetTokenVerifierMiddleware := resetTokenVerifier.Verify(func() interface{} {
		return new(utils.ForgotPasswordToken)
	})

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})
	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		if err := ctx.ReadJSON(&tokenInput); err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	user := app.Party("/api/user")
	{
		user.Post("/register", Register)
		user.Post("/login", Login)
		user.Post("/forgotpassword", ForgotPassword)
		user.Post("/resetpassword", resetTokenVerifierMiddleware, ResetPassword)
		user.Get("/me", accessTokenVerifierMiddleware, Me)
		user.Get("/search", accessTokenVerifierMiddleware, SearchUsers)
		user.Patch("/{id}/pushtoken", accessTokenVerifierMiddleware, utils.UserIDMiddleware, AlterPushToken)
		user.Patch("/{id}/settings/notifications", accessTokenVerifierMiddleware, utils.UserIDMiddleware, AllowsNotifications)
		user.Get("/{id:uint}/profile", GetUserProfile)
		user.Get("/{id:uint}/reviews", GetUserReviews)
	}

	plans := app.Party("/api/plans")
	{
		plans.Get("/", GetPlans)
		plans.Post("/", accessTokenVerifierMiddleware, CreatePlan)
		plans.Get("/my-requests", accessTokenVerifierMiddleware, GetMyJoinRequests)
		plans.Get("/{id:uint}", GetPlanByID)
		plans.Patch("/{id:uint}", accessTokenVerifierMiddleware, UpdatePlan)
		plans.Delete("/{id:uint}", accessTokenVerifierMiddleware, DeletePlan)
		plans.Get("/{id:uint}/attendees", GetPlanAttendees)
		plans.Post("/{id:uint}/join", accessTokenVerifierMiddleware, RequestToJoinPlan)
		plans.Get("/{id:uint}/requests", accessTokenVerifierMiddleware, GetPlanJoinRequests)
		plans.Post("/requests/{requestID:uint}/respond", accessTokenVerifierMiddleware, RespondToJoinRequest)
	}

	chats := app.Party("/api/chats")
	{
		chats.Post("/start-direct", accessTokenVerifierMiddleware, StartDirectChat)
		chats.Get("/", accessTokenVerifierMiddleware, GetChats)
		chats.Get("/{id:uint}", accessTokenVerifierMiddleware, GetChatMeta)
		chats.Get("/{id:uint}/messages", accessTokenVerifierMiddleware, GetChatMessages)
		chats.Post("/{id:uint}/messages", accessTokenVerifierMiddleware, SendChatMessage)
		chats.Post("/{id:uint}/typing", accessTokenVerifierMiddleware, Typing)
		chats.Get("/{id:uint}/typing", accessTokenVerifierMiddleware, ListTyping)
	}

	notifications := app.Party("/api/notifications")
	{
		notifications.Get("/", accessTokenVerifierMiddleware, GetNotifications)
		notifications.Get("/unread-count", accessTokenVerifierMiddleware, GetUnreadNotificationCount)
		notifications.Patch("/read-all", accessTokenVerifierMiddleware, MarkAllNotificationsRead)
		notifications.Patch("/{id:uint}/read", accessTokenVerifierMiddleware, MarkNotificationRead)
		notifications.Delete("/{id:uint}", accessTokenVerifierMiddleware, DeleteNotification)
	}

	connections := app.Party("/api/connections")
	{
		connections.Post("/{id:uint}/follow", accessTokenVerifierMiddleware, FollowUser)
		connections.Delete("/{id:uint}/follow", accessTokenVerifierMiddleware, UnfollowUser)
		connections.Get("/{id:uint}/followers", accessTokenVerifierMiddleware, GetFollowers)
		connections.Get("/{id:uint}/following", accessTokenVerifierMiddleware, GetFollowing)
	}

	reviews := app.Party("/api/reviews")
	{
		reviews.Post("/", accessTokenVerifierMiddleware, CreateUserReview)
		reviews.Get("/user/{id:uint}", GetUserReviews)
	}

	app.Post("/api/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

	require.NoError(t, app.Build())
	return app
}

// signTestToken returns a signed access token for the given user ID.
func signTestToken(id uint) string {
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 0)
	token, _ := signer.Sign(utils.AccessToken{ID: id})
	return string(token)
}

// createTestUser inserts a user row directly.
func createTestUser(t *testing.T, firstName, email string) models.User {
	t.Helper()
	user := models.User{
		FirstName: firstName,
		LastName:  "Tester",
		Email:     email,
	}
	require.NoError(t, storage.DB.Create(&user).Error)
	return user
}

// createTestPlan inserts a plan hosted by the given user.
func createTestPlan(t *testing.T, hostID uint, title string, maxAttendees int) models.Plan {
	t.Helper()
	plan := models.Plan{
		HostID:       hostID,
		Title:        title,
		Location:     "Warehouse 47",
		City:         "Berlin",
		Energy:       "hype",
		MaxAttendees: maxAttendees,
	}
	require.NoError(t, storage.DB.Create(&plan).Error)
	return plan
}

// doJSON performs a request with optional JSON body and bearer token, and
// decodes the JSON response body into a map.
func doJSON(t *testing.T, app *iris.Application, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	decoded := map[string]interface{}{}
	if resp.Body.Len() > 0 {
		json.Unmarshal(resp.Body.Bytes(), &decoded)
	}
	return resp, decoded
}

func uintParam(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func requireStatus(t *testing.T, resp *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, resp.Code, fmt.Sprintf("unexpected status, body: %s", resp.Body.String()))
}
