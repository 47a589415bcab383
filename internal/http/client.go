// Package http submits the multipart payload to the comparison endpoint.
package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/cookiejar"
	"net/url"
	"os"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/publicsuffix"

	"github.com/kyaw-zaya123/checking/internal/config"
	"github.com/kyaw-zaya123/checking/internal/constants"
	"github.com/kyaw-zaya123/checking/internal/logging"
	"github.com/kyaw-zaya123/checking/internal/models"
)

// Client posts payloads to the configured endpoint. Connection errors and
// 5xx responses are retried by retryablehttp; the in-memory body makes every
// attempt send identical bytes.
type Client struct {
	http     *retryablehttp.Client
	endpoint string
	cfg      *config.Config
	logger   *logging.Logger
}

// CreateUploadClient builds the transport for submissions on top of
// ConfigureHTTPClient: HTTP/2 when talking directly, HTTP/1.1 through proxies,
// and a cookie jar holding the session cookie for the endpoint origin only.
func CreateUploadClient(cfg *config.Config, logger *logging.Logger) (*nethttp.Client, error) {
	client, err := ConfigureHTTPClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	if tr, ok := client.Transport.(*nethttp.Transport); ok {
		tr.ForceAttemptHTTP2 = true
		_ = http2.ConfigureTransport(tr)

		// Proxies often break HTTP/2 streams mid-upload
		if (cfg.ProxyActive() && os.Getenv("FORCE_HTTP2") != "true") || os.Getenv("DISABLE_HTTP2") == "true" {
			tr.ForceAttemptHTTP2 = false
			tr.TLSNextProto = make(map[string]func(string, *tls.Conn) nethttp.RoundTripper)
		}
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	if cfg.Session.CookieName != "" {
		u, err := url.Parse(cfg.Upload.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("invalid endpoint: %w", err)
		}
		// No Domain attribute: a host-only cookie is never sent to another origin
		jar.SetCookies(u, []*nethttp.Cookie{{
			Name:  cfg.Session.CookieName,
			Value: cfg.Session.CookieValue,
			Path:  "/",
		}})
	}
	client.Jar = jar
	client.Timeout = 0

	return client, nil
}

// NewClient creates the submission client for cfg.
func NewClient(cfg *config.Config, logger *logging.Logger) (*Client, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	base, err := CreateUploadClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = base
	rc.RetryMax = cfg.Upload.Retries
	rc.RetryWaitMin = constants.RetryWaitMin
	rc.RetryWaitMax = constants.RetryWaitMax
	rc.Logger = leveledLogger{logger}
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		http:     rc,
		endpoint: cfg.Upload.Endpoint,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Endpoint returns the URL payloads are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Submit posts the payload and returns the response document.
// Non-2xx responses are returned as *StatusError.
func (c *Client) Submit(ctx context.Context, payload *models.Payload) (*models.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout())
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(ctx, nethttp.MethodPost, c.endpoint, payload.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", payload.ContentType)
	req.Header.Set("Accept", "text/html")

	c.logger.Debug().
		Str("endpoint", c.endpoint).
		Int("files", len(payload.Files)).
		Int("body_bytes", len(payload.Body)).
		Msg("posting payload")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) > constants.MaxResponseSize {
		return nil, fmt.Errorf("response exceeds %d bytes", constants.MaxResponseSize)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Code:   resp.StatusCode,
			Status: resp.Status,
			Body:   snippet(body),
		}
	}

	return &models.Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// Ping sends a HEAD request to the endpoint and returns the status code.
// A POST-only endpoint answers 405, which still proves it is reachable.
func (c *Client) Ping(ctx context.Context) (int, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, nethttp.MethodHead, c.endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request to %s failed: %w", c.endpoint, err)
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

func snippet(body []byte) string {
	const max = 200
	body = bytes.TrimSpace(body)
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}

// leveledLogger routes retryablehttp's messages through zerolog.
type leveledLogger struct {
	l *logging.Logger
}

func (a leveledLogger) Error(msg string, kv ...interface{}) { a.l.Error().Fields(kv).Msg(msg) }
func (a leveledLogger) Info(msg string, kv ...interface{})  { a.l.Debug().Fields(kv).Msg(msg) }
func (a leveledLogger) Debug(msg string, kv ...interface{}) { a.l.Debug().Fields(kv).Msg(msg) }
func (a leveledLogger) Warn(msg string, kv ...interface{})  { a.l.Warn().Fields(kv).Msg(msg) }
