package lark

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bitable-intake/internal/common/errors"
	"bitable-intake/internal/common/metrics"
)

// defaultTokenTTL applies when the exchange response states no lifetime.
const defaultTokenTTL = 7200 * time.Second

type tenantTokenRequest struct {
	AppID     string `json:"app_id"`
	AppSecret string `json:"app_secret"`
}

type tenantTokenResponse struct {
	envelope
	TenantAccessToken string `json:"tenant_access_token"`
	Expire            int    `json:"expire"`
}

// exchangeToken trades the app credentials for a tenant access token.
func (c *Client) exchangeToken(ctx context.Context) (tok Token, err error) {
	ctx, done := c.observe(ctx, opTokenExchange)
	defer func() { done(err) }()

	payload, err := json.Marshal(tenantTokenRequest{AppID: c.cfg.AppID, AppSecret: c.cfg.AppSecret})
	if err != nil {
		return Token{}, fmt.Errorf("failed to marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+tokenPath, bytes.NewReader(payload))
	if err != nil {
		return Token{}, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.http.Send(ctx, req)
	if err != nil {
		return Token{}, errors.NewTransportError(errors.ErrCodeTokenExchangeFailed, "Tenant token", err)
	}

	var out tenantTokenResponse
	if !resp.OK() || json.Unmarshal(resp.Body, &out) != nil || out.Code != 0 || out.TenantAccessToken == "" {
		return Token{}, errors.NewTokenExchangeFailedError(resp.StatusCode, string(resp.Body))
	}

	ttl := time.Duration(out.Expire) * time.Second
	if out.Expire <= 0 {
		ttl = defaultTokenTTL
	}

	metrics.TokenExchangesTotal.Inc()
	c.log.Info("Exchanged tenant access token", map[string]interface{}{
		"expireSeconds": int(ttl.Seconds()),
	})

	return Token{Value: out.TenantAccessToken, ExpiresAt: c.clock().Add(ttl)}, nil
}
