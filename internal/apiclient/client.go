// Package apiclient talks to the Village Mart storefront API. Every call carries
// the caller's session token, unwraps the {data, statusCode, message,
// timestamp, path} envelope and reports failures as *APIError.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"villagemart-admin/internal/models"
	"villagemart-admin/internal/session"
	"villagemart-admin/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const maxBodyBytes = 10 << 20

// Envelope is the wrapper every API response uses.
type Envelope struct {
	Data       json.RawMessage `json:"data"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Timestamp  string          `json:"timestamp"`
	Path       string          `json:"path"`
}

// Client calls the storefront API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// New creates a client for baseURL. A nil httpClient uses a default with no
// overall timeout; per-call deadlines come from the caller's context.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConnsPerHost: 16,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  util.Named("apiclient"),
	}
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get fetches path and decodes the unwrapped data into out.
func (c *Client) Get(ctx context.Context, sess *session.Session, path string, out any) error {
	return c.Do(ctx, sess, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, sess *session.Session, path string, body, out any) error {
	return c.Do(ctx, sess, http.MethodPost, path, body, out)
}

func (c *Client) Patch(ctx context.Context, sess *session.Session, path string, body, out any) error {
	return c.Do(ctx, sess, http.MethodPatch, path, body, out)
}

func (c *Client) Delete(ctx context.Context, sess *session.Session, path string, out any) error {
	return c.Do(ctx, sess, http.MethodDelete, path, nil, out)
}

// Do issues one JSON request. A nil sess sends no Authorization header.
func (c *Client) Do(ctx context.Context, sess *session.Session, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = bytes.NewReader(raw)
	}
	return c.send(ctx, sess, method, path, payload, "application/json", out)
}

// Upload posts a single file as multipart/form-data under field.
func (c *Client) Upload(ctx context.Context, sess *session.Session, path, field, filename, contentType string, data []byte, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create multipart part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("failed to write multipart part: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close multipart body: %w", err)
	}

	return c.send(ctx, sess, http.MethodPost, path, &buf, w.FormDataContentType(), out)
}

// Signin exchanges credentials for a token. It sends no bearer header.
func (c *Client) Signin(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.Do(ctx, nil, http.MethodPost, "/auth/signin", body, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, &APIError{Kind: KindShape, Method: http.MethodPost, Path: "/auth/signin", Resource: "auth", Message: "sign-in response carried no token"}
	}
	return &resp, nil
}

func (c *Client) send(ctx context.Context, sess *session.Session, method, path string, body io.Reader, contentType string, out any) (err error) {
	resource := ResourceOf(path)
	ctx, span := util.StartSpan(ctx, "apiclient."+method,
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	)
	start := time.Now()
	defer func() {
		util.EndSpan(span, err)
		util.BackendRequestDuration.WithLabelValues(method, resource).Observe(time.Since(start).Seconds())
		outcome := "ok"
		if err != nil {
			if k := KindOf(err); k != "" {
				outcome = string(k)
			} else {
				outcome = "error"
			}
		}
		util.BackendRequestsTotal.WithLabelValues(method, resource, outcome).Inc()
	}()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if sess != nil && sess.Token != "" {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(method, path, resource, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return transportError(method, path, resource, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			Kind:     kindForStatus(resp.StatusCode),
			Method:   method,
			Path:     path,
			Status:   resp.StatusCode,
			Message:  serverMessage(raw),
			Resource: resource,
		}
		c.logger.Warn("API call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message))
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := decodeData(raw, out); err != nil {
		return &APIError{Kind: KindShape, Method: method, Path: path, Status: resp.StatusCode, Resource: resource, Err: err}
	}
	return nil
}

// decodeData unwraps the envelope when present and tolerates bare payloads.
func decodeData(raw []byte, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return errors.New("empty response body")
	}
	if trimmed[0] == '{' {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
		if data, ok := probe["data"]; ok && !bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
			trimmed = data
		}
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("unexpected response shape: %w", err)
	}
	return nil
}

func serverMessage(raw []byte) string {
	var body struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if len(body.Message) > 0 {
		var single string
		if json.Unmarshal(body.Message, &single) == nil {
			return single
		}
		// Validation pipes on the API answer with a list of messages.
		var many []string
		if json.Unmarshal(body.Message, &many) == nil {
			return strings.Join(many, "; ")
		}
	}
	return body.Error
}

func transportError(method, path, resource string, err error) *APIError {
	kind := KindNetwork
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		kind = KindTimeout
	}
	return &APIError{Kind: kind, Method: method, Path: path, Resource: resource, Err: err}
}

// ResourceOf names the resource a path addresses: "/admin/customers/7" -> "customers".
func ResourceOf(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		if p == "api" || p == "admin" {
			continue
		}
		if p != "" {
			return parts[i]
		}
	}
	if len(parts) > 0 && parts[len(parts)-1] != "" {
		return parts[len(parts)-1]
	}
	return "root"
}
