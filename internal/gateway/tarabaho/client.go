package tarabaho

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"tarabaho-web/internal/domain"
	"tarabaho-web/pkg/apperror"
	"tarabaho-web/pkg/logger"

	"golang.org/x/net/publicsuffix"
)

// Client talks to the Tarabaho REST API. It implements the AuthGateway,
// GraduateGateway, CertificateGateway and PortfolioGateway interfaces.
type Client struct {
	baseURL string
	http    *http.Client
}

var (
	_ domain.AuthGateway        = (*Client)(nil)
	_ domain.GraduateGateway    = (*Client)(nil)
	_ domain.CertificateGateway = (*Client)(nil)
	_ domain.PortfolioGateway   = (*Client)(nil)
)

// NewClient builds a client with its own cookie jar. The API sets a session
// cookie next to the bearer token, and /api/graduate/get-token reads it back.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("tarabaho: base URL is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("tarabaho: invalid base URL: %w", err)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("tarabaho: cookie jar: %w", err)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}, nil
}

// errorBody covers the error shapes the API returns.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Field   string `json:"field"`
}

func (e errorBody) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// part is one field of a multipart request.
type part struct {
	name     string
	value    string
	filename string
	data     []byte
}

func field(name, value string) part {
	return part{name: name, value: value}
}

func filePart(name string, f *domain.FileUpload) part {
	return part{name: name, filename: f.Filename, data: f.Data}
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// doJSON sends in (if non-nil) as JSON and decodes a 2xx body into out (if non-nil).
func (c *Client) doJSON(ctx context.Context, method, path, token string, in, out interface{}) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return apperror.Internal(err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, method, path, token, body, contentType)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// doMultipart sends parts as multipart/form-data.
func (c *Client) doMultipart(ctx context.Context, method, path, token string, parts []part, out interface{}) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		if p.filename != "" {
			fw, err := w.CreateFormFile(p.name, p.filename)
			if err != nil {
				return apperror.Internal(err)
			}
			if _, err := fw.Write(p.data); err != nil {
				return apperror.Internal(err)
			}
			continue
		}
		if err := w.WriteField(p.name, p.value); err != nil {
			return apperror.Internal(err)
		}
	}
	if err := w.Close(); err != nil {
		return apperror.Internal(err)
	}

	req, err := c.newRequest(ctx, method, path, token, &buf, w.FormDataContentType())
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Log.Warn("Tarabaho API request failed", "method", req.Method, "path", req.URL.Path, "error", err)
		return apperror.Unavailable("Could not reach the Tarabaho service", err)
	}
	defer resp.Body.Close()

	logger.Log.Debug("Tarabaho API request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperror.Unavailable("Failed to read Tarabaho response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if b, ok := out.(*[]byte); ok {
		*b = raw
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperror.New(http.StatusBadGateway, "Unexpected response from the Tarabaho service", err)
	}
	return nil
}

// decodeError maps a non-2xx response to an AppError carrying the API's
// message. Bodies may be JSON ({message} or {error}) or plain text.
func decodeError(status int, raw []byte) error {
	var body errorBody
	msg := ""
	if json.Unmarshal(raw, &body) == nil {
		msg = body.text()
	} else {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	appErr := apperror.New(status, msg, fmt.Errorf("tarabaho: status %d", status))
	if body.Field != "" {
		appErr.Fields = map[string]string{body.Field: msg}
	}
	return appErr
}

// Ping reports whether the API answers at all. Any HTTP status counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodHead, "/", "", nil, "")
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return apperror.Unavailable("Could not reach the Tarabaho service", err)
	}
	resp.Body.Close()
	return nil
}
