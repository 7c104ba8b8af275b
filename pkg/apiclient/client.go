// Package apiclient is the Go client for the gymapp HTTP API. It owns the
// wire details (x-auth-token transport, the {errors:[{msg}]} envelope) so
// callers only see typed results and the server's own error messages.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const tokenHeader = "x-auth-token"

type Principal struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type AuthResult struct {
	Token string    `json:"token"`
	User  Principal `json:"user"`
}

type ClientProfile struct {
	ID       string  `json:"_id"`
	UserID   string  `json:"user"`
	FullName string  `json:"fullName"`
	Age      int     `json:"age"`
	Gender   string  `json:"gender"`
	Weight   float64 `json:"weight"`
	Height   float64 `json:"height"`
}

type TrainerProfile struct {
	ID                string   `json:"_id"`
	UserID            string   `json:"user"`
	Bio               string   `json:"bio"`
	Specializations   []string `json:"specializations"`
	Certifications    []string `json:"certifications"`
	Methodology       *string  `json:"methodology"`
	Availability      *string  `json:"availability"`
	ProfilePictureURL *string  `json:"profilePictureUrl"`
}

// OwnProfile is the GET /api/profiles/me response: the owner embedded plus
// the role-specific fields, kept raw for the caller to decode.
type OwnProfile struct {
	User Principal       `json:"user"`
	Raw  json.RawMessage `json:"-"`
}

// APIError is a response the server produced deliberately; Msg is the
// first server-provided message, verbatim.
type APIError struct {
	StatusCode int
	Msg        string
}

func (e *APIError) Error() string {
	return e.Msg
}

type errorEnvelope struct {
	Errors []struct {
		Msg string `json:"msg"`
	} `json:"errors"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Register(ctx context.Context, username, password, role string) (*AuthResult, error) {
	body := map[string]string{"username": username, "password": password, "role": role}
	var result AuthResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", "", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	body := map[string]string{"username": username, "password": password}
	var result AuthResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", "", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Verify revalidates a stored token against the server and returns the
// principal it belongs to.
func (c *Client) Verify(ctx context.Context, token string) (*Principal, error) {
	var principal Principal
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth", token, nil, &principal); err != nil {
		return nil, err
	}
	return &principal, nil
}

type ClientProfileInput struct {
	FullName string  `json:"fullName"`
	Age      int     `json:"age"`
	Gender   string  `json:"gender"`
	Weight   float64 `json:"weight"`
	Height   float64 `json:"height"`
}

type TrainerProfileInput struct {
	Bio               string   `json:"bio"`
	Specializations   []string `json:"specializations"`
	Certifications    []string `json:"certifications,omitempty"`
	Methodology       *string  `json:"methodology,omitempty"`
	Availability      *string  `json:"availability,omitempty"`
	ProfilePictureURL *string  `json:"profilePictureUrl,omitempty"`
}

func (c *Client) UpsertClientProfile(ctx context.Context, token string, in ClientProfileInput) (*ClientProfile, error) {
	var profile ClientProfile
	if err := c.doJSON(ctx, http.MethodPost, "/api/profiles/client", token, in, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) UpsertTrainerProfile(ctx context.Context, token string, in TrainerProfileInput) (*TrainerProfile, error) {
	var profile TrainerProfile
	if err := c.doJSON(ctx, http.MethodPost, "/api/profiles/trainer", token, in, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) MyProfile(ctx context.Context, token string) (*OwnProfile, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/profiles/me", token, nil)
	if err != nil {
		return nil, err
	}
	var profile OwnProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	profile.Raw = raw
	return &profile, nil
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, body, out any) error {
	raw, err := c.do(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(tokenHeader, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Msg: "Something went wrong. Please try again."}
		var envelope errorEnvelope
		if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Errors) > 0 && envelope.Errors[0].Msg != "" {
			apiErr.Msg = envelope.Errors[0].Msg
		}
		return nil, apiErr
	}

	return raw, nil
}
