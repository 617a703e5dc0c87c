// Package client is the admin panel client of the Centro Ecuestre API.
// Each component owns its list state, re-fetches after every mutation and
// checks its preconditions before any request is sent.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"ecuestre_go/models"
	"ecuestre_go/rules"
)

// ErrNotLoggedIn is returned by calls that need a session when there is none.
var ErrNotLoggedIn = errors.New("Sesión no iniciada")

// APIError is a non-2xx answer of the API. Message is the backend's "error"
// field and is meant to be shown as is.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// StatusOf returns the HTTP status of an APIError, or 0 for any other error.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client talks to the REST API on behalf of a Session.
type Client struct {
	baseURL string
	session *Session
	http    *http.Client
}

// New returns a client for the API served at baseURL (scheme and host, no
// /api suffix). A nil httpClient uses http.DefaultClient.
func New(baseURL string, session *Session, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if session == nil {
		session = NewSession()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
		http:    httpClient,
	}
}

func (c *Client) Session() *Session {
	return c.session
}

type loginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login opens a panel session. Only admins and teachers are accepted.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	var res loginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.send(ctx, http.MethodPost, "/auth/login", body, &res); err != nil {
		return nil, err
	}
	c.session.Load(res.Token, res.User)
	return &res.User, nil
}

// Logout revokes the token server side and clears the session. The session
// is cleared even when the request fails.
func (c *Client) Logout(ctx context.Context) error {
	defer c.session.Clear()
	if !c.session.LoggedIn() {
		return nil
	}
	return c.send(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// ChangePassword checks the confirmation locally before calling the API.
func (c *Client) ChangePassword(ctx context.Context, actual, nueva, confirmar string) error {
	if err := rules.ValidateNewPassword(nueva, confirmar); err != nil {
		return err
	}
	body := map[string]string{
		"password_actual":    actual,
		"password_nueva":     nueva,
		"password_confirmar": confirmar,
	}
	return c.send(ctx, http.MethodPost, "/auth/cambiar-password", body, nil)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

// send issues a request with an optional JSON body.
func (c *Client) send(ctx context.Context, method, path string, in, out interface{}) error {
	if in == nil {
		return c.do(ctx, method, path, nil, "", out)
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", method, path, err)
	}
	return c.do(ctx, method, path, bytes.NewReader(payload), "application/json", out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api"+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return decodeAPIError(res.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw = data
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(status int, data []byte) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		return &APIError{Status: status, Message: http.StatusText(status)}
	}
	return &APIError{Status: status, Message: body.Error}
}
