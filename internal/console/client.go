package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"workshop-backend/internal/appointments"
	"workshop-backend/internal/mechanics"
)

// Client talks to the workshop HTTP API.
type Client struct {
	BaseURL  string
	AdminKey string
	HTTP     *http.Client
}

func NewClient(baseURL, adminKey string) *Client {
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		AdminKey: adminKey,
		HTTP:     &http.Client{Timeout: 15 * time.Second},
	}
}

// APIError is a {success:false} response.
type APIError struct {
	Status  int
	Kind    string
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

type ListResponse struct {
	Message      string               `json:"message"`
	Appointments []appointments.Entry `json:"appointments"`
	Count        int                  `json:"count"`
	Degraded     int                  `json:"degraded"`
}

type ListParams struct {
	Date       string
	MechanicID string
	Status     string
}

func (c *Client) List(ctx context.Context, params ListParams) (ListResponse, error) {
	query := url.Values{}
	if params.Date != "" {
		query.Set("date", params.Date)
	}
	if params.MechanicID != "" {
		query.Set("mechanicId", params.MechanicID)
	}
	if params.Status != "" {
		query.Set("status", params.Status)
	}
	path := "/appointments"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var out ListResponse
	_, err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) Get(ctx context.Context, id string) (appointments.Entry, error) {
	var out struct {
		Appointment appointments.Entry `json:"appointment"`
	}
	_, err := c.do(ctx, http.MethodGet, "/appointments/"+url.PathEscape(id), nil, &out)
	return out.Appointment, err
}

// UpdateStatus returns the server's confirmation message.
func (c *Client) UpdateStatus(ctx context.Context, id, status string) (string, error) {
	body := appointments.StatusRequest{AppointmentID: id, Status: status}
	return c.do(ctx, http.MethodPut, "/appointments/status", body, nil)
}

func (c *Client) Book(ctx context.Context, req appointments.BookRequest) (appointments.Entry, error) {
	var out struct {
		Appointment appointments.Entry `json:"appointment"`
	}
	_, err := c.do(ctx, http.MethodPost, "/appointments", req, &out)
	return out.Appointment, err
}

func (c *Client) Delete(ctx context.Context, id string) (string, error) {
	return c.do(ctx, http.MethodDelete, "/appointments/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Mechanics(ctx context.Context) ([]mechanics.View, error) {
	var out struct {
		Mechanics []mechanics.View `json:"mechanics"`
	}
	_, err := c.do(ctx, http.MethodGet, "/mechanics", nil, &out)
	return out.Mechanics, err
}

func (c *Client) Stats(ctx context.Context) (appointments.Stats, error) {
	var out appointments.Stats
	_, err := c.do(ctx, http.MethodGet, "/appointments/stats", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) (string, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return "", err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.AdminKey != "" {
		req.Header.Set("X-Admin-Key", c.AdminKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("HTTP %d: unexpected response", resp.StatusCode)
	}
	if !env.Success {
		message := env.Message
		if message == "" {
			message = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return "", &APIError{Status: resp.StatusCode, Kind: env.Error, Message: message}
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return "", fmt.Errorf("decode response: %w", err)
		}
	}
	return env.Message, nil
}
