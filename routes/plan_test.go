package routes

import (
	"net/http"
	"testing"
	"time"

	"nightplans-server/models"
	"nightplans-server/storage"

	"github.com/stretchr/testify/require"
)

func TestCreatePlanRequiresAuth(t *testing.T) {
	app := buildTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/plans", "", map[string]interface{}{
		"title":        "Rooftop warmup",
		"description":  "Drinks before the club",
		"location":     "Hotel Amano",
		"energy":       "social",
		"maxAttendees": 6,
		"startsAt":     time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCreateAndGetPlan(t *testing.T) {
	app := buildTestApp(t)

	host := createTestUser(t, "Rico", "rico@example.com")
	token := signTestToken(host.ID)

	resp, body := doJSON(t, app, http.MethodPost, "/api/plans", token, map[string]interface{}{
		"title":        "Techno till sunrise",
		"description":  "Meeting at the door, list entry",
		"location":     "Tresor",
		"city":         "Berlin",
		"energy":       "hype",
		"priceLevel":   2,
		"tags":         []string{"techno", "late"},
		"maxAttendees": 4,
		"startsAt":     time.Now().Add(72 * time.Hour).Format(time.RFC3339),
	})
	requireStatus(t, resp, http.StatusCreated)

	plan, ok := body["plan"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "Techno till sunrise", plan["title"])
	require.Equal(t, float64(host.ID), plan["hostID"])
	require.Equal(t, float64(4), body["spotsLeft"])

	planID := plan["ID"].(float64)
	resp, body = doJSON(t, app, http.MethodGet, "/api/plans/"+uintParam(uint(planID)), "", nil)
	requireStatus(t, resp, http.StatusOK)
	fetched := body["plan"].(map[string]interface{})
	require.Equal(t, "hype", fetched["energy"])
}

func TestCreatePlanRejectsUnknownEnergy(t *testing.T) {
	app := buildTestApp(t)

	host := createTestUser(t, "Tara", "tara@example.com")
	resp, _ := doJSON(t, app, http.MethodPost, "/api/plans", signTestToken(host.ID), map[string]interface{}{
		"title":        "Mystery night",
		"description":  "Somewhere loud",
		"location":     "TBD",
		"energy":       "frantic",
		"maxAttendees": 4,
		"startsAt":     time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetPlansFilterAndPaging(t *testing.T) {
	app := buildTestApp(t)

	host := createTestUser(t, "Juno", "juno@example.com")
	for i := 0; i < 3; i++ {
		createTestPlan(t, host.ID, "Berlin night", 10)
	}
	lisbon := models.Plan{HostID: host.ID, Title: "Lisbon rooftop", Location: "Bairro Alto", City: "Lisbon", Energy: "chill", MaxAttendees: 8}
	require.NoError(t, storage.DB.Create(&lisbon).Error)

	resp, body := doJSON(t, app, http.MethodGet, "/api/plans?city=Lisbon", "", nil)
	requireStatus(t, resp, http.StatusOK)
	data := body["data"].([]interface{})
	require.Len(t, data, 1)

	resp, body = doJSON(t, app, http.MethodGet, "/api/plans?limit=2", "", nil)
	requireStatus(t, resp, http.StatusOK)
	data = body["data"].([]interface{})
	require.Len(t, data, 2)
	meta := body["meta"].(map[string]interface{})
	require.Equal(t, float64(4), meta["total"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/plans?energy=chill", "", nil)
	requireStatus(t, resp, http.StatusOK)
	data = body["data"].([]interface{})
	require.Len(t, data, 1)
}

func TestUpdateAndDeletePlanOwnership(t *testing.T) {
	app := buildTestApp(t)

	host := createTestUser(t, "Vera", "vera@example.com")
	stranger := createTestUser(t, "Max", "max@example.com")
	plan := createTestPlan(t, host.ID, "Opening night", 10)

	resp, _ := doJSON(t, app, http.MethodPatch, "/api/plans/"+uintParam(plan.ID), signTestToken(stranger.ID),
		map[string]interface{}{"title": "Hijacked"})
	require.Equal(t, http.StatusForbidden, resp.Code)

	resp, body := doJSON(t, app, http.MethodPatch, "/api/plans/"+uintParam(plan.ID), signTestToken(host.ID),
		map[string]interface{}{"title": "Opening night, round two"})
	requireStatus(t, resp, http.StatusOK)
	updated := body["plan"].(map[string]interface{})
	require.Equal(t, "Opening night, round two", updated["title"])

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/plans/"+uintParam(plan.ID), signTestToken(host.ID), nil)
	requireStatus(t, resp, http.StatusNoContent)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/plans/"+uintParam(plan.ID), "", nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
}
