package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crew-ops-backend/internal/model"
)

func TestPutSubscription_RequiresBody(t *testing.T) {
	router, token := setupTestRouter(t)

	w := doJSON(router, http.MethodPut, "/api/subscriptions", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscriptionRoundTrip(t *testing.T) {
	router, token := setupTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/projects", token, gin.H{"name": "North Field Ops"})
	require.Equal(t, http.StatusCreated, w.Code)
	var project model.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &project))

	endpoint := "https://example.com/push/abc"
	w = doJSON(router, http.MethodPut, "/api/subscriptions", token, gin.H{
		"endpoint":            endpoint,
		"p256dh":              "key",
		"auth":                "secret",
		"subscribed_projects": []string{project.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Endpoints are matched verbatim, so the query value stays unescaped.
	w = doJSON(router, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), project.ID)

	w = doJSON(router, http.MethodDelete, "/api/subscriptions", token, gin.H{"endpoint": endpoint})
	assert.Equal(t, http.StatusNoContent, w.Code)
}
