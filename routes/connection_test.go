package routes

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFollowUnfollow(t *testing.T) {
	app := buildTestApp(t)

	follower := createTestUser(t, "Wren", "wren@example.com")
	followee := createTestUser(t, "Xena", "xena@example.com")
	token := signTestToken(follower.ID)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/connections/"+uintParam(followee.ID)+"/follow", token, nil)
	requireStatus(t, resp, http.StatusCreated)

	// Duplicate follow
	resp, body := doJSON(t, app, http.MethodPost, "/api/connections/"+uintParam(followee.ID)+"/follow", token, nil)
	requireStatus(t, resp, http.StatusOK)
	require.Equal(t, "already_following", body["error"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/connections/"+uintParam(followee.ID)+"/followers", token, nil)
	requireStatus(t, resp, http.StatusOK)
	users := body["users"].([]interface{})
	require.Len(t, users, 1)
	require.Equal(t, "Wren", users[0].(map[string]interface{})["firstName"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/connections/"+uintParam(follower.ID)+"/following", token, nil)
	requireStatus(t, resp, http.StatusOK)
	require.Len(t, body["users"].([]interface{}), 1)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/connections/"+uintParam(followee.ID)+"/follow", token, nil)
	requireStatus(t, resp, http.StatusNoContent)

	// Unfollow twice
	resp, _ = doJSON(t, app, http.MethodDelete, "/api/connections/"+uintParam(followee.ID)+"/follow", token, nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestFollowScreening(t *testing.T) {
	app := buildTestApp(t)

	user := createTestUser(t, "Yani", "yani@example.com")
	token := signTestToken(user.ID)

	// Self follow
	resp, _ := doJSON(t, app, http.MethodPost, "/api/connections/"+uintParam(user.ID)+"/follow", token, nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	// Unknown target
	resp, _ = doJSON(t, app, http.MethodPost, "/api/connections/99999/follow", token, nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
}
