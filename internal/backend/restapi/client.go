// Package restapi implements service.Service over the task service's JSON REST API.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"todo/internal/config"
	"todo/internal/logging"
	"todo/internal/service"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// Client implements service.Service using the REST API.
type Client struct {
	baseURL string

	// anon is used for login and register; authed attaches the credential.
	anon   *http.Client
	authed *http.Client

	log *zap.Logger
}

// Option configures a Client.
type Option func(*options)

type options struct {
	base http.RoundTripper
	log  *zap.Logger
}

// WithTransport sets the underlying round tripper (for testing).
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.base = rt }
}

// WithLogger sets the logger for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

// New creates a REST client for cfg.BaseURL. Authenticated calls take their
// credential from ts at request time.
func New(cfg *config.Config, ts oauth2.TokenSource, opts ...Option) *Client {
	o := options{base: http.DefaultTransport}
	for _, opt := range opts {
		opt(&o)
	}
	log := logging.OrNop(o.log).Named("restapi")
	traced := &tracingTransport{base: o.base, log: log}

	return &Client{
		baseURL: cfg.BaseURL,
		anon:    &http.Client{Transport: traced, Timeout: cfg.Timeout},
		authed: &http.Client{
			Transport: &oauth2.Transport{Source: ts, Base: traced},
			Timeout:   cfg.Timeout,
		},
		log: log,
	}
}

// Register implements service.AuthService.
func (c *Client) Register(ctx context.Context, req service.RegisterRequest) (service.AuthResult, error) {
	var res service.AuthResult
	if err := c.do(ctx, c.anon, http.MethodPost, "/auth/register", req, &res); err != nil {
		return service.AuthResult{}, err
	}
	if res.Token == "" {
		return service.AuthResult{}, errors.New("register response carried no token")
	}
	return res, nil
}

// Login implements service.AuthService.
func (c *Client) Login(ctx context.Context, req service.LoginRequest) (service.AuthResult, error) {
	var res service.AuthResult
	if err := c.do(ctx, c.anon, http.MethodPost, "/auth/login", req, &res); err != nil {
		return service.AuthResult{}, err
	}
	if res.Token == "" {
		return service.AuthResult{}, errors.New("login response carried no token")
	}
	return res, nil
}

// Logout implements service.AuthService.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, c.authed, http.MethodPost, "/auth/logout", nil, nil)
}

// Me implements service.AuthService.
func (c *Client) Me(ctx context.Context) (service.User, error) {
	var user service.User
	if err := c.do(ctx, c.authed, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return service.User{}, err
	}
	return user, nil
}

// ListTasks implements service.TaskService.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	var tasks []service.Task
	if err := c.do(ctx, c.authed, http.MethodGet, tasksPath, nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []service.Task{}
	}
	return tasks, nil
}

// CreateTask implements service.TaskService.
func (c *Client) CreateTask(ctx context.Context, fields service.TaskFields) (service.Task, error) {
	var task service.Task
	if err := c.do(ctx, c.authed, http.MethodPost, tasksPath, fields, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// UpdateTask implements service.TaskService.
func (c *Client) UpdateTask(ctx context.Context, id int64, fields service.TaskFields) (service.Task, error) {
	var task service.Task
	if err := c.do(ctx, c.authed, http.MethodPut, taskPath(id), fields, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// DeleteTask implements service.TaskService.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, c.authed, http.MethodDelete, taskPath(id), nil, nil)
}

// tasksPath is the task collection. Task routes end in a slash; the
// service does not redirect writes sent without one.
const tasksPath = "/tasks/"

func taskPath(id int64) string {
	return tasksPath + strconv.FormatInt(id, 10) + "/"
}

// do sends a JSON request and decodes a JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return wrapError(method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: invalid response: %w", method, path, err)
	}
	return nil
}

// decodeError builds an APIError from a non-2xx response.
// Accepts {"detail": "..."} and field maps like {"password": ["..."]}.
func decodeError(resp *http.Response) error {
	apiErr := &service.APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return apiErr
	}

	for key, value := range raw {
		if key == "detail" {
			var detail string
			if json.Unmarshal(value, &detail) == nil {
				apiErr.Detail = detail
			}
			continue
		}
		var msgs []string
		if json.Unmarshal(value, &msgs) != nil {
			var msg string
			if json.Unmarshal(value, &msg) != nil {
				continue
			}
			msgs = []string{msg}
		}
		if apiErr.Fields == nil {
			apiErr.Fields = make(map[string][]string)
		}
		apiErr.Fields[key] = msgs
	}
	return apiErr
}

// wrapError wraps transport errors with user-friendly messages.
func wrapError(method, path string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%s %s: request timed out: %w", method, path, err)
	}
	return fmt.Errorf("%s %s: %w", method, path, err)
}

// tracingTransport tags each request with an X-Request-ID and logs the
// exchange at debug level. Headers are never logged.
type tracingTransport struct {
	base http.RoundTripper
	log  *zap.Logger
}

func (t *tracingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	id := uuid.NewString()
	req.Header.Set("X-Request-ID", id)

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	fields := []zap.Field{
		zap.String("request_id", id),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		t.log.Debug("request failed", append(fields, zap.Error(err))...)
		return nil, err
	}
	t.log.Debug("request done", append(fields, zap.Int("status", resp.StatusCode))...)
	return resp, nil
}
