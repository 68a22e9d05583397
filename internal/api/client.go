// Package api is the authenticated client for the publish service. It speaks
// the JSON protocol (Post) and the legacy multipart protocol (CallMethod);
// both return the same Response envelope.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"pubctl/internal/logx"
)

const (
	// DefaultTimeout bounds a single remote call
	DefaultTimeout = 30 * time.Second

	requestIDHeader = "X-Request-Id"
)

// Poster issues JSON operations such as "publish/history"
type Poster interface {
	Post(ctx context.Context, operation string, payload map[string]interface{}) (*Response, error)
}

// FormCaller issues legacy multipart method calls such as "publishInfo"
type FormCaller interface {
	CallMethod(ctx context.Context, method string, form []FormField) (*Response, error)
}

// FormField is one multipart form value. Order is preserved on the wire.
type FormField struct {
	Name  string
	Value string
}

// Response is the envelope returned by every publish operation
type Response struct {
	QueryResult json.RawMessage `json:"queryResult"`
	Errors      []ResponseError `json:"errors,omitempty"`
}

// ResponseError is a server-reported failure inside a Response
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Decode unmarshals the queryResult into v.
func (r *Response) Decode(v interface{}) error {
	if len(r.QueryResult) == 0 || string(r.QueryResult) == "null" {
		return nil
	}
	return json.Unmarshal(r.QueryResult, v)
}

// Options configures a Client
type Options struct {
	// BaseURL is the JSON API root; operations are appended as path segments
	BaseURL string

	// LegacyBaseURL is the multipart API root; methods are appended as path segments
	LegacyBaseURL string

	// Timeout bounds each call; DefaultTimeout when zero
	Timeout time.Duration

	Authenticator Authenticator
	Logger        logx.Logger

	// HTTPClient overrides the transport, mainly for tests
	HTTPClient *http.Client
}

// Client implements Poster and FormCaller over HTTP
type Client struct {
	baseURL       string
	legacyBaseURL string
	auth          Authenticator
	logger        logx.Logger
	http          *http.Client
}

var (
	_ Poster     = (*Client)(nil)
	_ FormCaller = (*Client)(nil)
)

// NewClient creates a publish API client
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if opts.Authenticator == nil {
		return nil, ErrNotAuthenticated
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logx.NopLogger{}
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	legacy := opts.LegacyBaseURL
	if legacy == "" {
		legacy = opts.BaseURL
	}
	return &Client{
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		legacyBaseURL: strings.TrimRight(legacy, "/"),
		auth:          opts.Authenticator,
		logger:        opts.Logger,
		http:          httpClient,
	}, nil
}

// Post sends payload as JSON to operation. Nil and empty-string values are
// omitted from the body.
func (c *Client) Post(ctx context.Context, operation string, payload map[string]interface{}) (*Response, error) {
	body := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		body[k] = v
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, &RemoteError{Operation: operation, Message: "failed to encode payload", Err: err}
	}
	url := fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(operation, "/"))
	return c.do(ctx, operation, url, "application/json", bytes.NewReader(data))
}

// CallMethod sends form as multipart/form-data to the legacy method endpoint.
// Fields with empty values are skipped.
func (c *Client) CallMethod(ctx context.Context, method string, form []FormField) (*Response, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range form {
		if f.Value == "" {
			continue
		}
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, &RemoteError{Operation: method, Message: "failed to encode form", Err: err}
		}
	}
	if err := w.Close(); err != nil {
		return nil, &RemoteError{Operation: method, Message: "failed to encode form", Err: err}
	}
	url := fmt.Sprintf("%s/%s", c.legacyBaseURL, strings.TrimLeft(method, "/"))
	return c.do(ctx, method, url, w.FormDataContentType(), &buf)
}

func (c *Client) do(ctx context.Context, operation, url, contentType string, body io.Reader) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, &RemoteError{Operation: operation, Message: "failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)

	if err := c.auth.Authenticate(req); err != nil {
		return nil, &RemoteError{Operation: operation, Message: "authentication failed", Err: err}
	}

	c.logger.Debug("POST %s (request %s)", url, requestID)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RemoteError{Operation: operation, Err: err}
	}
	defer resp.Body.Close()
	c.logger.Debug("%s returned %d in %s", operation, resp.StatusCode, time.Since(start))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteError{Operation: operation, StatusCode: resp.StatusCode, Message: "failed to read response", Err: err}
	}

	var out Response
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rerr := &RemoteError{Operation: operation, StatusCode: resp.StatusCode}
		if decodeErr == nil && len(out.Errors) > 0 {
			rerr.Code = out.Errors[0].Code
			rerr.Message = out.Errors[0].Message
		} else {
			rerr.Message = strings.TrimSpace(string(raw))
		}
		return nil, rerr
	}
	if decodeErr != nil {
		return nil, &RemoteError{Operation: operation, StatusCode: resp.StatusCode, Message: "failed to decode response", Err: decodeErr}
	}
	if len(out.Errors) > 0 {
		return nil, &RemoteError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Code:       out.Errors[0].Code,
			Message:    out.Errors[0].Message,
		}
	}
	return &out, nil
}
