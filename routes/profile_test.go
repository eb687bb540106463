package routes

import (
	"net/http"
	"testing"
	"time"

	"nightplans-server/models"
	"nightplans-server/storage"

	"github.com/stretchr/testify/require"
)

func TestGetUserProfileAggregate(t *testing.T) {
	app := buildTestApp(t)

	host := createTestUser(t, "Faye", "faye@example.com")
	fan := createTestUser(t, "Gus", "gus@example.com")

	plan := createTestPlan(t, host.ID, "Closing party", 10)
	createTestPlan(t, host.ID, "Warmup drinks", 6)

	now := time.Now()
	attendance := models.PlanAttendee{PlanID: plan.ID, UserID: fan.ID, Status: "accepted", RespondedAt: &now}
	require.NoError(t, storage.DB.Create(&attendance).Error)

	require.NoError(t, storage.DB.Create(&models.Connection{FollowerID: fan.ID, FolloweeID: host.ID}).Error)

	review := models.Review{ReviewerID: fan.ID, SubjectID: host.ID, Stars: 4, Body: "Solid plans", IsVisible: true}
	require.NoError(t, storage.DB.Create(&review).Error)

	resp, body := doJSON(t, app, http.MethodGet, "/api/user/"+uintParam(host.ID)+"/profile", "", nil)
	requireStatus(t, resp, http.StatusOK)

	profile := body["profile"].(map[string]interface{})
	require.Equal(t, float64(2), profile["hostedCount"])
	require.Equal(t, float64(0), profile["joinedCount"])
	require.Equal(t, float64(1), profile["followerCount"])
	require.Equal(t, float64(0), profile["followingCount"])

	rating := profile["rating"].(map[string]interface{})
	require.Equal(t, float64(4), rating["average"])
	require.Equal(t, float64(1), rating["count"])

	require.Len(t, profile["recentPlans"].([]interface{}), 2)
	require.Len(t, profile["reviews"].([]interface{}), 1)

	user := profile["user"].(map[string]interface{})
	require.Equal(t, "Faye", user["firstName"])
}

func TestGetUserProfileJoinedCount(t *testing.T) {
	app := buildTestApp(t)

	host := createTestUser(t, "Hugo", "hugo@example.com")
	guest := createTestUser(t, "Iris", "iris@example.com")
	plan := createTestPlan(t, host.ID, "Boat night", 12)

	now := time.Now()
	require.NoError(t, storage.DB.Create(&models.PlanAttendee{
		PlanID: plan.ID, UserID: guest.ID, Status: "accepted", RespondedAt: &now,
	}).Error)
	// Pending rows do not count
	other := createTestPlan(t, host.ID, "Afters", 5)
	require.NoError(t, storage.DB.Create(&models.PlanAttendee{
		PlanID: other.ID, UserID: guest.ID, Status: "pending",
	}).Error)

	resp, body := doJSON(t, app, http.MethodGet, "/api/user/"+uintParam(guest.ID)+"/profile", "", nil)
	requireStatus(t, resp, http.StatusOK)
	profile := body["profile"].(map[string]interface{})
	require.Equal(t, float64(1), profile["joinedCount"])
}

func TestGetUserProfileNotFound(t *testing.T) {
	app := buildTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/user/424242/profile", "", nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
}
