package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekagra-app/ekagra/pkg/models"
)

func TestRemoteStart(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/timer/start", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "success",
			"data": map[string]interface{}{
				"timer": map[string]interface{}{
					"id":       "t-1",
					"type":     "pomodoro",
					"duration": 25,
				},
			},
		})
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, "tok-123")
	taskID := "task-1"
	timer, err := r.Start(context.Background(), models.KindPomodoro, 25, &taskID)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "pomodoro", gotBody["type"])
	assert.Equal(t, float64(25), gotBody["duration"])
	assert.Equal(t, "task-1", gotBody["task"])
	assert.Equal(t, "t-1", timer.ID)
}

func TestRemoteEndNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "error",
			"message": "timer not found",
		})
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, "tok-123")
	_, err := r.End(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoteServerErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "error",
			"message": "duration must be at least 1 minute",
		})
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, "")
	_, err := r.Start(context.Background(), models.KindPomodoro, 0, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "duration must be at least 1 minute")
}

func TestRemoteHistoryQueryParams(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/timer/history", r.URL.Path)
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "success",
			"data":   map[string]interface{}{"timers": []interface{}{}},
		})
	}))
	defer srv.Close()

	kind := models.KindShortBreak
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	r := NewRemote(srv.URL, "tok")
	timers, err := r.History(context.Background(), models.HistoryFilter{Kind: &kind, Start: &start})
	require.NoError(t, err)
	assert.Empty(t, timers)

	assert.Equal(t, []string{"shortBreak"}, gotQuery["type"])
	assert.Equal(t, []string{start.Format(time.RFC3339)}, gotQuery["startDate"])
	assert.NotContains(t, gotQuery, "endDate")
}

func TestRemoteLoginReturnsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "success",
			"data":   map[string]interface{}{"token": "fresh-token"},
		})
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, "")
	token, err := r.Login(context.Background(), "user@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
}

func TestRemoteRejectsNonJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, "")
	_, err := r.Stats(context.Background(), nil, nil)
	assert.Error(t, err)
}
