package routes

import (
	"net/http"
	"testing"

	"nightplans-server/models"
	"nightplans-server/storage"

	"github.com/stretchr/testify/require"
)

func TestCreateReviewAndBadge(t *testing.T) {
	app := buildTestApp(t)

	reviewer := createTestUser(t, "Zara", "zara@example.com")
	subject := createTestUser(t, "Abel", "abel@example.com")
	token := signTestToken(reviewer.ID)

	resp, body := doJSON(t, app, http.MethodPost, "/api/reviews", token, map[string]interface{}{
		"subjectID": subject.ID,
		"body":      "Great host, knew every doorman in town",
		"stars":     5,
	})
	requireStatus(t, resp, http.StatusCreated)
	require.Equal(t, true, body["success"])

	// first_review badge awarded exactly once
	var badge models.Badge
	require.NoError(t, storage.DB.Where("code = ?", "first_review").First(&badge).Error)
	var awards int64
	storage.DB.Model(&models.UserBadge{}).
		Where("user_id = ? AND badge_id = ?", reviewer.ID, badge.ID).
		Count(&awards)
	require.Equal(t, int64(1), awards)

	// One review per reviewer and subject
	resp, body = doJSON(t, app, http.MethodPost, "/api/reviews", token, map[string]interface{}{
		"subjectID": subject.ID,
		"body":      "Changed my mind",
		"stars":     2,
	})
	requireStatus(t, resp, http.StatusOK)
	require.Equal(t, "already_reviewed", body["error"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/reviews/user/"+uintParam(subject.ID), "", nil)
	requireStatus(t, resp, http.StatusOK)
	reviews := body["reviews"].([]interface{})
	require.Len(t, reviews, 1)
	first := reviews[0].(map[string]interface{})
	require.Equal(t, float64(5), first["stars"])
	require.Equal(t, "Zara", first["reviewer"].(map[string]interface{})["firstName"])
}

func TestCreateReviewValidation(t *testing.T) {
	app := buildTestApp(t)

	reviewer := createTestUser(t, "Bela", "bela@example.com")
	subject := createTestUser(t, "Cato", "cato@example.com")
	token := signTestToken(reviewer.ID)

	// Stars out of range
	resp, _ := doJSON(t, app, http.MethodPost, "/api/reviews", token, map[string]interface{}{
		"subjectID": subject.ID,
		"stars":     6,
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	// Self review
	resp, _ = doJSON(t, app, http.MethodPost, "/api/reviews", token, map[string]interface{}{
		"subjectID": reviewer.ID,
		"stars":     5,
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestHiddenReviewsExcluded(t *testing.T) {
	app := buildTestApp(t)

	reviewer := createTestUser(t, "Dion", "dion@example.com")
	subject := createTestUser(t, "Elia", "elia@example.com")

	visible := models.Review{ReviewerID: reviewer.ID, SubjectID: subject.ID, Stars: 4, IsVisible: true}
	require.NoError(t, storage.DB.Create(&visible).Error)
	hidden := models.Review{ReviewerID: subject.ID, SubjectID: reviewer.ID, Stars: 1, IsVisible: true}
	require.NoError(t, storage.DB.Create(&hidden).Error)
	require.NoError(t, storage.DB.Model(&hidden).Update("is_visible", false).Error)

	resp, body := doJSON(t, app, http.MethodGet, "/api/reviews/user/"+uintParam(reviewer.ID), "", nil)
	requireStatus(t, resp, http.StatusOK)
	require.Empty(t, body["reviews"])
}
