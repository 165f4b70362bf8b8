package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/lotus-events/internal/handlers"
	"github.com/jwebster45206/lotus-events/internal/session"
	"github.com/jwebster45206/lotus-events/pkg/player"
)

// stepResponse is what one step saw. Only the fields for its action are set.
type stepResponse struct {
	Status  int
	Event   *handlers.EventResponse
	Choice  *handlers.ChoiceResponse
	Session session.View
}

// CreateSession starts a session for p, or for the server's default player when p is nil.
func CreateSession(ctx context.Context, client *http.Client, baseURL string, p *player.State) (session.View, error) {
	var view session.View
	status, body, err := doJSON(ctx, client, http.MethodPost, baseURL+"/v1/sessions", handlers.CreateSessionRequest{Player: p})
	if err != nil {
		return view, err
	}
	if status != http.StatusCreated {
		return view, fmt.Errorf("create session returned %d: %s", status, string(body))
	}
	if err := json.Unmarshal(body, &view); err != nil {
		return view, fmt.Errorf("failed to decode session: %w", err)
	}
	return view, nil
}

// DeleteSession ends a session.
func DeleteSession(ctx context.Context, client *http.Client, baseURL string, id uuid.UUID) error {
	status, body, err := doJSON(ctx, client, http.MethodDelete, sessionURL(baseURL, id), nil)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent {
		return fmt.Errorf("delete session returned %d: %s", status, string(body))
	}
	return nil
}

// PostEvent draws the next event for a session.
func PostEvent(ctx context.Context, client *http.Client, baseURL string, id uuid.UUID) (stepResponse, error) {
	status, body, err := doJSON(ctx, client, http.MethodPost, sessionURL(baseURL, id)+"/event", nil)
	if err != nil {
		return stepResponse{}, err
	}
	out := stepResponse{Status: status}
	if status != http.StatusOK {
		return out, nil
	}

	var resp handlers.EventResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return out, fmt.Errorf("failed to decode event response: %w", err)
	}
	out.Event = &resp
	out.Session = resp.Session
	return out, nil
}

// PostChoice resolves option on the session's current event.
func PostChoice(ctx context.Context, client *http.Client, baseURL string, id uuid.UUID, option int) (stepResponse, error) {
	status, body, err := doJSON(ctx, client, http.MethodPost, sessionURL(baseURL, id)+"/choice", handlers.ChoiceRequest{Option: option})
	if err != nil {
		return stepResponse{}, err
	}
	out := stepResponse{Status: status}
	if status != http.StatusOK {
		return out, nil
	}

	var resp handlers.ChoiceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return out, fmt.Errorf("failed to decode choice response: %w", err)
	}
	out.Choice = &resp
	out.Session = resp.Session
	return out, nil
}

func sessionURL(baseURL string, id uuid.UUID) string {
	return baseURL + "/v1/sessions/" + id.String()
}

func doJSON(ctx context.Context, client *http.Client, method, url string, payload any) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to execute %s %s: %w", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}
