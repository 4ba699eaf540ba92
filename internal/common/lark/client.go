// internal/common/lark/client.go
package lark

import (
	"context"
	"strings"
	"time"

	"bitable-intake/internal/common/config"
	commonhttp "bitable-intake/internal/common/http"
	"bitable-intake/internal/common/logger"
	"bitable-intake/internal/common/metrics"
	"bitable-intake/internal/common/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	tokenPath   = "/open-apis/auth/v3/tenant_access_token/internal"
	recordsPath = "/open-apis/bitable/v1/apps/%s/tables/%s/records"
	fieldsPath  = "/open-apis/bitable/v1/apps/%s/tables/%s/fields"
	uploadPath  = "/open-apis/drive/v1/files/upload_all"

	opTokenExchange = "token_exchange"
	opCreateRecord  = "create_record"
	opUploadFile    = "upload_file"
	opListFields    = "list_fields"

	defaultBaseURL     = "https://open.larksuite.com"
	defaultTimeout     = 30 * time.Second
	defaultRefreshSkew = 60 * time.Second
	defaultParentType  = "bitable"
)

// Config holds the open platform credentials and endpoints.
type Config struct {
	AppID            string
	AppSecret        string
	AppToken         string
	BaseURL          string
	DriveBaseURL     string
	UploadParentType string
	UploadParentNode string
	Timeout          time.Duration
	RefreshSkew      time.Duration
}

// NewConfig builds the client configuration from the application config.
func NewConfig(cfg *config.Config) Config {
	return Config{
		AppID:            cfg.Lark.AppID,
		AppSecret:        cfg.Lark.AppSecret,
		AppToken:         cfg.Bitable.AppToken,
		BaseURL:          cfg.Lark.BaseURL,
		DriveBaseURL:     cfg.Lark.DriveBaseURL,
		UploadParentType: cfg.Lark.UploadParentType,
		UploadParentNode: cfg.Lark.UploadParentNode,
		Timeout:          config.GetDuration(cfg.Lark.Timeout),
		RefreshSkew:      time.Duration(cfg.Lark.TokenRefreshSkew) * time.Second,
	}
}

// Client talks to the tenant token, bitable and drive endpoints.
type Client struct {
	cfg    Config
	http   *commonhttp.Client
	store  TokenStore
	tokens *TokenCache
	clock  Clock
	log    logger.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the outbound HTTP client.
func WithHTTPClient(c *commonhttp.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithTokenStore replaces the in-memory token slot.
func WithTokenStore(s TokenStore) Option {
	return func(cl *Client) { cl.store = s }
}

// WithClock replaces time.Now for token expiry computations.
func WithClock(clock Clock) Option {
	return func(cl *Client) { cl.clock = clock }
}

func WithLogger(log logger.Logger) Option {
	return func(cl *Client) { cl.log = log }
}

// NewClient creates a client. The token cache is built last so options
// can swap its store and clock.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.DriveBaseURL == "" {
		cfg.DriveBaseURL = cfg.BaseURL
	}
	cfg.DriveBaseURL = strings.TrimSuffix(cfg.DriveBaseURL, "/")
	if cfg.UploadParentType == "" {
		cfg.UploadParentType = defaultParentType
	}
	if cfg.UploadParentNode == "" {
		cfg.UploadParentNode = cfg.AppToken
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RefreshSkew <= 0 {
		cfg.RefreshSkew = defaultRefreshSkew
	}

	c := &Client{
		cfg:   cfg,
		http:  commonhttp.NewClient(cfg.Timeout),
		store: NewMemoryTokenStore(),
		clock: time.Now,
		log:   logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.tokens = NewTokenCache(c.store, c.exchangeToken, c.clock, cfg.RefreshSkew, c.log)
	return c
}

// TenantAccessToken returns a cached tenant token, exchanging credentials
// when the cached one is absent or close to expiry.
func (c *Client) TenantAccessToken(ctx context.Context) (string, error) {
	return c.tokens.Get(ctx)
}

// observe opens a span for a remote call and returns the function that
// closes it and records the call metrics.
func (c *Client) observe(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := observability.StartSpan(ctx, "lark."+op, attrs...)
	started := time.Now()
	return ctx, func(err error) {
		metrics.ObserveRemoteCall(op, started, err)
		observability.EndSpan(span, err)
	}
}

// envelope is the status part every open platform response carries.
type envelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}
