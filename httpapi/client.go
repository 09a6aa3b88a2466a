// Package httpapi implements the remote service contracts over HTTP/JSON.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/focusflow/focusflow-go"
)

type Client struct {
	baseURL string
	hc      *http.Client
	l       log.Logger
}

var (
	_ focusflow.SessionService = (*Client)(nil)
	_ focusflow.TaskService    = (*Client)(nil)
	_ focusflow.RewardService  = (*Client)(nil)
)

func NewClient(baseURL string, timeout time.Duration, logger log.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
		l:       logger,
	}
}

type sessionInfoBody struct {
	SessionID string `json:"session_id"`
	GoalLabel string `json:"goal_label"`
	ColorTag  string `json:"color_tag"`
	Status    string `json:"status"`
}

func (b sessionInfoBody) toInfo() focusflow.SessionInfo {
	return focusflow.SessionInfo{
		ID:        focusflow.SessionID(b.SessionID),
		GoalLabel: b.GoalLabel,
		ColorTag:  b.ColorTag,
		Status:    b.Status,
	}
}

func (c *Client) CreateSession(ctx context.Context, req focusflow.CreateSessionRequest) (focusflow.SessionInfo, error) {
	body := struct {
		GoalLabel   string `json:"goal_label"`
		ColorTag    string `json:"color_tag"`
		Description string `json:"description"`
	}{req.GoalLabel, req.ColorTag, req.Description}

	var resp sessionInfoBody
	if err := c.doJSON(ctx, http.MethodPost, "/sessions", body, &resp); err != nil {
		return focusflow.SessionInfo{}, err
	}
	return resp.toInfo(), nil
}

func (c *Client) SetSessionStatus(ctx context.Context, id focusflow.SessionID, action focusflow.SessionAction) (focusflow.SessionInfo, error) {
	body := struct {
		Action string `json:"action"`
	}{action.String()}

	var resp sessionInfoBody
	path := fmt.Sprintf("/sessions/%s/status", id)
	if err := c.doJSON(ctx, http.MethodPost, path, body, &resp); err != nil {
		return focusflow.SessionInfo{}, err
	}
	return resp.toInfo(), nil
}

func (c *Client) CompleteSession(ctx context.Context, id focusflow.SessionID, actualDurationSeconds int) (focusflow.CompletionResult, error) {
	body := struct {
		ActualDurationSeconds int `json:"actual_duration_seconds"`
	}{actualDurationSeconds}

	var resp struct {
		SessionID      string `json:"session_id"`
		CoinEarned     int    `json:"coin_earned"`
		CycleCompleted bool   `json:"cycle_completed"`
		TotalFocusTime int    `json:"total_focus_time"`
	}
	path := fmt.Sprintf("/sessions/%s/complete", id)
	if err := c.doJSON(ctx, http.MethodPost, path, body, &resp); err != nil {
		return focusflow.CompletionResult{}, err
	}
	return focusflow.CompletionResult{
		ID:             focusflow.SessionID(resp.SessionID),
		CoinEarned:     resp.CoinEarned,
		CycleCompleted: resp.CycleCompleted,
		TotalFocusTime: resp.TotalFocusTime,
	}, nil
}

func (c *Client) ListSessions(ctx context.Context) ([]focusflow.SessionInfo, error) {
	var resp []sessionInfoBody
	if err := c.doJSON(ctx, http.MethodGet, "/sessions", nil, &resp); err != nil {
		return nil, err
	}
	infos := make([]focusflow.SessionInfo, 0, len(resp))
	for _, b := range resp {
		infos = append(infos, b.toInfo())
	}
	return infos, nil
}

func (c *Client) ToggleTaskCompletion(ctx context.Context, id focusflow.TaskID) (focusflow.TaskToggleResult, error) {
	var resp struct {
		Task struct {
			ID        string `json:"id"`
			Text      string `json:"text"`
			Completed bool   `json:"completed"`
		} `json:"task"`
		AllTasksCompletedToday bool `json:"all_tasks_completed_today"`
	}
	path := fmt.Sprintf("/tasks/%s/toggle", id)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return focusflow.TaskToggleResult{}, err
	}
	return focusflow.TaskToggleResult{
		Task: focusflow.TaskRecord{
			ID:        focusflow.TaskID(resp.Task.ID),
			Text:      resp.Task.Text,
			Completed: resp.Task.Completed,
		},
		AllTasksCompletedToday: resp.AllTasksCompletedToday,
	}, nil
}

func (c *Client) GrantCoins(ctx context.Context, amount int, reason string) (focusflow.CoinBalance, error) {
	body := struct {
		Amount int    `json:"amount"`
		Reason string `json:"reason"`
	}{amount, reason}

	var resp struct {
		NewBalance int `json:"new_balance"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/rewards/coins", body, &resp); err != nil {
		return focusflow.CoinBalance{}, err
	}
	return focusflow.CoinBalance{NewBalance: resp.NewBalance}, nil
}

// doJSON performs one request. Transport failures, timeouts, non-2xx
// statuses, and malformed bodies all map to ErrRemoteUnavailable; the
// engine treats them identically.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.l.Debug("remote call", "method", method, "path", path)
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, focusflow.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close() //nolint

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: %w: status %d", method, path, focusflow.ErrRemoteUnavailable, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: %w: decode response: %v", method, path, focusflow.ErrRemoteUnavailable, err)
	}
	return nil
}
