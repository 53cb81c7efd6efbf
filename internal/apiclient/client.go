package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	httpclient "github.com/appleboy/go-httpclient"
	"go.uber.org/zap"
)

const (
	// DefaultBackendURL is used when PULSE_BACKEND_URL is unset.
	DefaultBackendURL = "http://localhost:3000"

	defaultTimeout = 30 * time.Second

	// NewSessionTokenHeader carries a refreshed sealed session on bearer requests.
	NewSessionTokenHeader = "X-New-Session-Token"
)

var (
	// ErrUnauthorized is returned for any 401 response.
	ErrUnauthorized = errors.New("not authenticated")
	// ErrConnection wraps transport failures.
	ErrConnection = errors.New("failed to reach pulse backend")
	// ErrInvalidResponse is returned when a response body cannot be decoded.
	ErrInvalidResponse = errors.New("invalid response from pulse backend")
)

// APIError is a non-2xx response with its decoded error body.
type APIError struct {
	Status      int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	msg := e.Code
	if e.Description != "" {
		if msg != "" {
			msg += ": "
		}
		msg += e.Description
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, msg)
}

// Unwrap maps 401 responses onto ErrUnauthorized.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// TokenStore supplies the bearer token and persists refreshed ones.
type TokenStore interface {
	Token() string
	UpdateToken(token string) error
}

// DeviceAuthorization is the response of POST /cli/auth/device.
type DeviceAuthorization struct {
	DeviceCode              string `json:"deviceCode"`
	UserCode                string `json:"userCode"`
	VerificationURL         string `json:"verificationUrl"`
	VerificationURLComplete string `json:"verificationUrlComplete"`
	ExpiresIn               int    `json:"expiresIn"`
	Interval                int    `json:"interval"`
}

// DeviceToken is the successful response of POST /cli/auth/token.
type DeviceToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// User is the profile returned by GET /user.
type User struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	FavoriteColor string `json:"favoriteColor"`
}

// Validation is the response of GET /cli/auth/validate.
type Validation struct {
	Valid     bool      `json:"valid"`
	WorkOSID  string    `json:"workosId"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Message          string `json:"message"`
}

// Client talks to the Pulse backend on behalf of the CLI.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// BackendURLFromEnv returns PULSE_BACKEND_URL or the local default.
func BackendURLFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("PULSE_BACKEND_URL")); v != "" {
		return v
	}
	return DefaultBackendURL
}

// New builds a client for baseURL. Every request carries the bearer token from
// tokens, and refreshed tokens are persisted before the response is returned.
func New(baseURL string, tokens TokenStore, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := httpclient.NewClient(
		httpclient.WithTimeout(defaultTimeout),
		httpclient.WithTransport(&authTransport{
			base:   http.DefaultTransport,
			tokens: tokens,
			logger: logger,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    client,
		logger:  logger,
	}, nil
}

// RequestDeviceCode starts a device authorization.
func (c *Client) RequestDeviceCode(ctx context.Context) (*DeviceAuthorization, error) {
	var out DeviceAuthorization
	if err := c.do(ctx, http.MethodPost, "/cli/auth/device", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PollToken checks once whether deviceCode has been authorized.
func (c *Client) PollToken(ctx context.Context, deviceCode string) (*DeviceToken, error) {
	var out DeviceToken
	body := map[string]string{"deviceCode": deviceCode}
	if err := c.do(ctx, http.MethodPost, "/cli/auth/token", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Validate asks the backend whether the stored device token is still valid.
func (c *Client) Validate(ctx context.Context) (*Validation, error) {
	var out Validation
	if err := c.do(ctx, http.MethodGet, "/cli/auth/validate", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentUser returns the authenticated user's profile.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/user", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// GetFavoriteColor returns the stored color, empty when unset.
func (c *Client) GetFavoriteColor(ctx context.Context) (string, error) {
	var out struct {
		FavoriteColor string `json:"favoriteColor"`
	}
	if err := c.do(ctx, http.MethodGet, "/favorite-color", nil, &out); err != nil {
		return "", err
	}
	return out.FavoriteColor, nil
}

// SetFavoriteColor stores color and returns the normalized value.
func (c *Client) SetFavoriteColor(ctx context.Context, color string) (string, error) {
	var out struct {
		FavoriteColor string `json:"favoriteColor"`
	}
	body := map[string]string{"favoriteColor": color}
	if err := c.do(ctx, http.MethodPost, "/favorite-color", body, &out); err != nil {
		return "", err
	}
	return out.FavoriteColor, nil
}

func (c *Client) do(ctx context.Context, method, path string, reqBody, out any) error {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response", ErrInvalidResponse)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseError(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

func parseError(status int, data []byte) error {
	apiErr := &APIError{Status: status}

	var eb errorBody
	if err := json.Unmarshal(data, &eb); err == nil {
		apiErr.Code = eb.Error
		apiErr.Description = eb.ErrorDescription
		if apiErr.Description == "" {
			apiErr.Description = eb.Message
		}
		return apiErr
	}

	preview := strings.TrimSpace(string(data))
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	apiErr.Description = preview
	return apiErr
}

// ErrorCode returns the OAuth-style error code of err, if any.
func ErrorCode(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

// StatusCode returns the HTTP status of err, or 0 for non-HTTP errors.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
