package lark

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"bitable-intake/internal/common/errors"

	"go.opentelemetry.io/otel/attribute"
)

const fieldsPageSize = 200

// Field describes one column of a bitable table.
type Field struct {
	FieldID   string `json:"field_id"`
	FieldName string `json:"field_name"`
	Type      int    `json:"type"`
	UIType    string `json:"ui_type,omitempty"`
	IsPrimary bool   `json:"is_primary,omitempty"`
}

type listFieldsResponse struct {
	envelope
	Data struct {
		Items     []Field `json:"items"`
		HasMore   bool    `json:"has_more"`
		PageToken string  `json:"page_token"`
	} `json:"data"`
}

// ListFields returns every field of tableID, following pagination.
func (c *Client) ListFields(ctx context.Context, token, tableID string) (fields []Field, err error) {
	ctx, done := c.observe(ctx, opListFields, attribute.String("bitable.table_id", tableID))
	defer func() { done(err) }()

	base := c.cfg.BaseURL + fmt.Sprintf(fieldsPath, url.PathEscape(c.cfg.AppToken), url.PathEscape(tableID))
	fields = []Field{}
	pageToken := ""

	for {
		q := url.Values{}
		q.Set("page_size", fmt.Sprint(fieldsPageSize))
		if pageToken != "" {
			q.Set("page_token", pageToken)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create list fields request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.http.Send(ctx, req)
		if err != nil {
			return nil, errors.NewTransportError(errors.ErrCodeFieldListFailed, "List fields", err)
		}

		var page listFieldsResponse
		if !resp.OK() || json.Unmarshal(resp.Body, &page) != nil || page.Code != 0 {
			return nil, errors.NewFieldListFailedError(resp.StatusCode, string(resp.Body))
		}

		fields = append(fields, page.Data.Items...)
		if !page.Data.HasMore || page.Data.PageToken == "" {
			break
		}
		pageToken = page.Data.PageToken
	}

	return fields, nil
}
