package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/focusflow/focusflow-go"
)

func newTestClient(url string) *Client {
	return NewClient(url, time.Second, *log.Default())
}

func TestClient_CreateSession(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/sessions", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "write tests", body["goal_label"])
		assert.Equal(t, "tomato", body["color_tag"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"session_id": "session-123",
			"goal_label": body["goal_label"],
			"color_tag":  body["color_tag"],
			"status":     "idle",
		})
	}))
	defer srv.Close()

	info, err := newTestClient(srv.URL).CreateSession(context.Background(), focusflow.CreateSessionRequest{
		GoalLabel: "write tests",
		ColorTag:  "tomato",
	})
	require.NoError(t, err)
	assert.Equal(t, focusflow.SessionID("session-123"), info.ID)
	assert.Equal(t, "write tests", info.GoalLabel)
}

func TestClient_SetSessionStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sessions/session-123/status", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "pause", body["action"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"session_id": "session-123",
			"status":     "paused",
		})
	}))
	defer srv.Close()

	info, err := newTestClient(srv.URL).SetSessionStatus(context.Background(), "session-123", focusflow.PauseAction)
	require.NoError(t, err)
	assert.Equal(t, "paused", info.Status)
}

func TestClient_CompleteSession(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sessions/session-123/complete", r.URL.Path)

		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 1500, body["actual_duration_seconds"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"session_id":      "session-123",
			"coin_earned":     10,
			"cycle_completed": true,
			"total_focus_time": 3000,
		})
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).CompleteSession(context.Background(), "session-123", 1500)
	require.NoError(t, err)
	assert.Equal(t, 10, result.CoinEarned)
	assert.True(t, result.CycleCompleted)
	assert.Equal(t, 3000, result.TotalFocusTime)
}

func TestClient_ListSessions(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"session_id": "s-1", "goal_label": "Deep work"},
			{"session_id": "s-2", "goal_label": "Reading"},
		})
	}))
	defer srv.Close()

	infos, err := newTestClient(srv.URL).ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "Deep work", infos[0].GoalLabel)
}

func TestClient_ToggleTaskCompletion(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tasks/task-9/toggle", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"task": map[string]any{
				"id":        "task-9",
				"text":      "review PR",
				"completed": true,
			},
			"all_tasks_completed_today": true,
		})
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).ToggleTaskCompletion(context.Background(), "task-9")
	require.NoError(t, err)
	assert.True(t, result.Task.Completed)
	assert.True(t, result.AllTasksCompletedToday)
}

func TestClient_GrantCoins(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rewards/coins", r.URL.Path)

		var body struct {
			Amount int    `json:"amount"`
			Reason string `json:"reason"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 10, body.Amount)
		assert.Equal(t, "cycle_completed", body.Reason)

		_ = json.NewEncoder(w).Encode(map[string]int{"new_balance": 110})
	}))
	defer srv.Close()

	balance, err := newTestClient(srv.URL).GrantCoins(context.Background(), 10, "cycle_completed")
	require.NoError(t, err)
	assert.Equal(t, 110, balance.NewBalance)
}

func TestClient_ErrorMapping(t *testing.T) {
	t.Parallel()

	t.Run("server error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).CreateSession(context.Background(), focusflow.CreateSessionRequest{})
		assert.ErrorIs(t, err, focusflow.ErrRemoteUnavailable)
	})

	t.Run("connection refused", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		_, err := newTestClient(srv.URL).ListSessions(context.Background())
		assert.ErrorIs(t, err, focusflow.ErrRemoteUnavailable)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).GrantCoins(context.Background(), 1, "x")
		assert.ErrorIs(t, err, focusflow.ErrRemoteUnavailable)
	})
}
