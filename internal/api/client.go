// Package api is the client for the storefront's single remote endpoint.
//
// Every remote operation is an [Action] sent to one URL. [Client.Do] is the
// only function that touches the network; it never returns an error value.
// Transport failures, HTTP failures and application rejections all come
// back as an [Envelope] with Success false and a displayable Message, with
// the classified cause attached in Envelope.Err.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/coolteam/cardshop/internal/errors"
	"github.com/coolteam/cardshop/internal/logging"
	"github.com/coolteam/cardshop/internal/model"
	"github.com/coolteam/cardshop/internal/session"
	"github.com/google/uuid"
)

// Messages synthesized by the client when the server gives none.
const (
	MsgRateLimited  = "Too many requests, please try again later."
	MsgUnauthorized = "unauthorized, please log in again"
	MsgNetwork      = "network error"
	MsgTimeout      = "request timed out"
	MsgCanceled     = "request canceled"
	MsgMalformed    = "malformed response"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

const maxBodyBytes = 8 << 20

// Request describes one call. Params become query parameters on GET, where
// empty values are dropped. Form fields and File become multipart parts on
// POST; a field that should be omitted must be left out of Form.
type Request struct {
	Action Action
	Params map[string]string
	Form   map[string]string
	File   *File
}

// File is an uploaded multipart part.
type File struct {
	Field string
	Name  string
	Body  io.Reader
}

// Envelope is the normalized response. Status and Err are not part of the
// wire format.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Token   string          `json:"token,omitempty"`
	URL     string          `json:"url,omitempty"`
	Count   model.Count     `json:"count,omitempty"`

	Status    int    `json:"-"`
	RequestID string `json:"-"`
	Err       error  `json:"-"`
}

// Client talks to the remote endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	tokens     session.TokenSource
	logger     *logging.Logger
	newID      func() string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithTokenSource attaches the admin bearer token store.
func WithTokenSource(tokens session.TokenSource) ClientOption {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRequestIDFunc replaces the request id generator.
func WithRequestIDFunc(fn func() string) ClientOption {
	return func(c *Client) {
		c.newID = fn
	}
}

// NewClient creates a Client for the endpoint at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		logger:     logging.NopLogger(),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the endpoint URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs one call and normalizes every outcome into an Envelope.
func (c *Client) Do(ctx context.Context, req Request) *Envelope {
	id := c.newID()
	log := c.logger.WithAction(req.Action.String()).WithRequestID(id)
	start := time.Now()

	env := c.do(ctx, req, id)
	env.RequestID = id

	elapsed := time.Since(start).Milliseconds()
	if env.Err == nil {
		log.Debug("request completed", "status", env.Status, "duration_ms", elapsed)
		return env
	}

	args := []any{"status", env.Status, "duration_ms", elapsed, "error", env.Err.Error()}
	switch errors.GetSeverity(env.Err) {
	case errors.SeverityInfo, errors.SeverityDebug:
		log.Info("request rejected", args...)
	case errors.SeverityWarning:
		log.Warn("request failed", args...)
	default:
		log.Error("request failed", args...)
	}
	return env
}

func (c *Client) do(ctx context.Context, req Request, id string) *Envelope {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return failure(errors.NewAPIError(req.Action.String(), MsgNetwork, errors.Join(errors.ErrTransport, err)))
	}
	httpReq.Header.Set(RequestIDHeader, id)
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return failure(c.transportError(ctx, req.Action, err))
	}
	defer func() { _ = resp.Body.Close() }()

	apiErr := func(msg string, cause error) *errors.APIError {
		return errors.NewAPIError(req.Action.String(), msg, cause).WithStatus(resp.StatusCode).WithRequestID(id)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return failure(apiErr(MsgRateLimited, errors.ErrRateLimited).WithSeverity(errors.SeverityWarning).WithRetryable(true))
	}

	if resp.StatusCode == http.StatusUnauthorized && c.tokens != nil {
		c.tokens.ClearToken()
	}

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	var env Envelope
	decodeErr := readErr
	if decodeErr == nil {
		decodeErr = json.Unmarshal(body, &env)
	}
	env.Status = resp.StatusCode

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = MsgUnauthorized
		}
		env.Success = false
		env.Message = msg
		env.Err = apiErr(msg, errors.ErrUnauthorized).WithSeverity(errors.SeverityWarning)
		return &env

	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = fmt.Sprintf("request failed: HTTP %d", resp.StatusCode)
		}
		env.Success = false
		env.Message = msg
		env.Err = apiErr(msg, errors.ErrHTTPStatus)
		return &env

	case readErr != nil:
		return failure(apiErr(MsgNetwork, errors.Join(errors.ErrTransport, readErr)).WithRetryable(true))

	case decodeErr != nil:
		return failure(apiErr(MsgMalformed, errors.Join(errors.ErrMalformedResponse, decodeErr)))

	case !env.Success:
		env.Err = apiErr(env.Message, errors.ErrRejected).WithSeverity(errors.SeverityInfo)
		return &env
	}

	return &env
}

func (c *Client) transportError(ctx context.Context, action Action, err error) *errors.APIError {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return errors.NewAPIError(action.String(), MsgTimeout,
			errors.NewTimeoutError(action.String(), c.timeout).WithCause(err)).
			WithSeverity(errors.SeverityWarning).WithRetryable(true)
	case errors.Is(ctx.Err(), context.Canceled):
		return errors.NewAPIError(action.String(), MsgCanceled, errors.Join(errors.ErrCanceled, err)).
			WithSeverity(errors.SeverityInfo)
	default:
		return errors.NewAPIError(action.String(), MsgNetwork, errors.Join(errors.ErrTransport, err)).
			WithRetryable(true)
	}
}

func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	q := u.Query()
	q.Set("action", req.Action.String())

	method := req.Action.Method()
	if method == http.MethodGet {
		for k, v := range req.Params {
			if v != "" {
				q.Set(k, v)
			}
		}
		u.RawQuery = q.Encode()
		return http.NewRequestWithContext(ctx, method, u.String(), nil)
	}
	u.RawQuery = q.Encode()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	keys := make([]string, 0, len(req.Form))
	for k := range req.Form {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if err := mw.WriteField(k, req.Form[k]); err != nil {
			return nil, errors.Wrapf(err, "write field %s", k)
		}
	}
	if req.File != nil {
		part, err := mw.CreateFormFile(req.File.Field, req.File.Name)
		if err != nil {
			return nil, fmt.Errorf("create file part: %w", err)
		}
		if _, err := io.Copy(part, req.File.Body); err != nil {
			return nil, fmt.Errorf("copy file part: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	return httpReq, nil
}

func failure(err *errors.APIError) *Envelope {
	return &Envelope{
		Success:   false,
		Message:   err.Message(),
		Status:    err.Status,
		RequestID: err.RequestID,
		Err:       err,
	}
}
