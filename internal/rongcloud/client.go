package rongcloud

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yangxing-star/rongyun/internal/config"
)

// Version is reported in the user-agent header.
const Version = "1.0"

const (
	defaultResponseFormat = "json"
	defaultMaxBodyBytes   = 8 << 20
)

// Header names sent with every request.
const (
	HeaderAppKey      = "App-Key"
	HeaderNonce       = "Nonce"
	HeaderTimestamp   = "Timestamp"
	HeaderSignature   = "Signature"
	HeaderContentType = "Content-Type"
	HeaderUserAgent   = "User-Agent"
)

// HTTPClient abstracts the http.Client Do method for easier testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option customises the behaviour of the client.
type Option func(*Client)

// WithHTTPClient replaces the transport. The TLS verification setting only
// applies to the client built by NewClient, not to one supplied here.
func WithHTTPClient(client HTTPClient) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
			c.customTransport = true
		}
	}
}

// WithSigner overrides the signer, mostly to pin the clock in tests.
func WithSigner(s *Signer) Option {
	return func(c *Client) {
		if s != nil {
			c.signer = s
		}
	}
}

// WithUserAgent overrides the user-agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = ua
		}
	}
}

// WithBodyLimit caps how many response bytes are read.
func WithBodyLimit(limit int64) Option {
	return func(c *Client) {
		if limit > 0 {
			c.maxBodyBytes = limit
		}
	}
}

// WithClock overrides the clock used to measure call duration.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// Client signs, encodes and dispatches RongCloud API calls. It is immutable
// after construction and safe for concurrent use.
type Client struct {
	logger          zerolog.Logger
	appKey          string
	appSecret       string
	apiHost         string
	responseFormat  string
	userAgent       string
	verify          bool
	httpClient      HTTPClient
	customTransport bool
	signer          *Signer
	now             func() time.Time
	maxBodyBytes    int64
}

// NewClient constructs a client. Empty credentials fall back to the
// rongcloud_app_key and rongcloud_app_secret environment variables; an empty
// host or format falls back to the defaults.
func NewClient(cfg config.RongCloudConfig, logger zerolog.Logger, opts ...Option) (*Client, error) {
	appKey := strings.TrimSpace(cfg.AppKey)
	if appKey == "" {
		appKey = strings.TrimSpace(os.Getenv(config.EnvAppKey))
	}
	appSecret := strings.TrimSpace(cfg.AppSecret)
	if appSecret == "" {
		appSecret = strings.TrimSpace(os.Getenv(config.EnvAppSecret))
	}
	if appKey == "" || appSecret == "" {
		return nil, ErrMissingCredentials
	}

	host := strings.TrimRight(strings.TrimSpace(cfg.APIHost), "/")
	if host == "" {
		host = config.DefaultAPIHost
	}
	u, err := url.Parse(host)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("rongcloud: api host %q must be an absolute http(s) URL", host)
	}

	format := strings.Trim(strings.TrimSpace(cfg.ResponseFormat), ".")
	if format == "" {
		format = defaultResponseFormat
	}

	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}

	c := &Client{
		logger:         logger,
		appKey:         appKey,
		appSecret:      appSecret,
		apiHost:        host,
		responseFormat: format,
		userAgent:      fmt.Sprintf("RongCloudSdk/RongCloud-Go-Sdk %s (%s)", runtime.Version(), Version),
		verify:         !cfg.InsecureSkipVerify,
		signer:         NewSigner(),
		now:            time.Now,
		maxBodyBytes:   defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.httpClient == nil {
		c.httpClient = newHTTPClient(c.verify)
	}
	if !c.verify && !c.customTransport {
		c.logger.Warn().
			Str("api_host", c.apiHost).
			Msg("rongcloud client: TLS certificate verification disabled")
	}

	return c, nil
}

func newHTTPClient(verify bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: !verify, // #nosec G402 -- explicit opt-in via RONGCLOUD_VERIFY_TLS=false.
	}
	return &http.Client{
		Transport: transport,
		// A redirect would replay the signed request to another host.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// AppKey returns the configured app key.
func (c *Client) AppKey() string { return c.appKey }

// Endpoint returns the full URL of an action.
func (c *Client) Endpoint(action Action) string {
	return c.apiHost + action.Path + "." + c.responseFormat
}

// SignedHeaders returns a fresh header set for a request with the given
// content type. Each call draws a new nonce.
func (c *Client) SignedHeaders(ct ContentType) (map[string]string, error) {
	mime := ct.MIME()
	if mime == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContentType, ct)
	}
	stamp, err := c.signer.Sign(c.appSecret)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		HeaderContentType: mime,
		HeaderUserAgent:   c.userAgent,
		HeaderAppKey:      c.appKey,
		HeaderNonce:       stamp.Nonce,
		HeaderTimestamp:   stamp.Timestamp,
		HeaderSignature:   stamp.Signature,
	}, nil
}

// Invoke sends the catalog action with the given name using its default
// content type.
func (c *Client) Invoke(ctx context.Context, name string, params Params) (*Response, error) {
	action, ok := LookupAction(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	return c.Send(ctx, action, params)
}

// Send dispatches action with its declared content type.
func (c *Client) Send(ctx context.Context, action Action, params Params) (*Response, error) {
	return c.SendAs(ctx, action, params, action.ContentType)
}

// SendAs dispatches action with an explicit content type. It performs exactly
// one POST. A reply whose payload code is not 200 is returned with
// Success=false and a nil error.
func (c *Client) SendAs(ctx context.Context, action Action, params Params, ct ContentType) (*Response, error) {
	if err := action.validate(); err != nil {
		return nil, err
	}
	body, err := encodeBody(params, ct)
	if err != nil {
		return nil, fmt.Errorf("rongcloud: encode %s body: %w", action.Name, err)
	}
	headers, err := c.SignedHeaders(ct)
	if err != nil {
		return nil, err
	}

	endpoint := c.Endpoint(action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("rongcloud: new request: %w", err)
	}
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	start := c.now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().
			Str("action", action.Name).
			Str("url", endpoint).
			Err(err).
			Msg("rongcloud dispatch failed")
		return nil, &TransportError{Action: action.Name, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := c.readBody(resp.Body)
	if err != nil {
		return nil, &TransportError{Action: action.Name, URL: endpoint, Status: resp.StatusCode, Err: err}
	}

	result, err := normalize(raw, resp.StatusCode)
	if err != nil {
		c.logger.Warn().
			Str("action", action.Name).
			Int("status_code", resp.StatusCode).
			Err(err).
			Msg("rongcloud reply is not JSON")
		return nil, &TransportError{
			Action: action.Name,
			URL:    endpoint,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("decode response: %w", err),
		}
	}

	c.logger.Debug().
		Str("action", action.Name).
		Int("status_code", resp.StatusCode).
		Int64("code", result.Code).
		Bool("success", result.Success).
		Dur("duration", c.now().Sub(start)).
		Msg("rongcloud dispatch completed")
	return result, nil
}

func (c *Client) readBody(rc io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(rc, c.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > c.maxBodyBytes {
		return nil, errors.New("response body exceeds limit")
	}
	return data, nil
}
