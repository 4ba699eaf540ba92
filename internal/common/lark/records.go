package lark

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"bitable-intake/internal/common/errors"

	"go.opentelemetry.io/otel/attribute"
)

// Record is a bitable row as returned by the create endpoint.
type Record struct {
	RecordID string                 `json:"record_id"`
	Fields   map[string]interface{} `json:"fields,omitempty"`
}

// RecordResponse is the create-record response body. Raw keeps the body
// exactly as received and is what gets serialized back out.
type RecordResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Record Record `json:"record"`
	} `json:"data"`
	Raw json.RawMessage `json:"-"`
}

func (r RecordResponse) MarshalJSON() ([]byte, error) {
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}
	type plain RecordResponse
	return json.Marshal(plain(r))
}

// RecordID returns the id of the created row, possibly "".
func (r *RecordResponse) RecordID() string {
	if r == nil {
		return ""
	}
	return r.Data.Record.RecordID
}

type createRecordRequest struct {
	Fields map[string]interface{} `json:"fields"`
}

// CreateRecord appends a row to tableID. An HTTP success whose body code
// is not zero is still a failure.
func (c *Client) CreateRecord(ctx context.Context, token, tableID string, fields map[string]interface{}) (rec *RecordResponse, err error) {
	ctx, done := c.observe(ctx, opCreateRecord, attribute.String("bitable.table_id", tableID))
	defer func() { done(err) }()

	payload, err := json.Marshal(createRecordRequest{Fields: fields})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record fields: %w", err)
	}

	endpoint := c.cfg.BaseURL + fmt.Sprintf(recordsPath, url.PathEscape(c.cfg.AppToken), url.PathEscape(tableID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create record request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Send(ctx, req)
	if err != nil {
		return nil, errors.NewTransportError(errors.ErrCodeRecordCreateFailed, "Create record", err)
	}

	var out RecordResponse
	if !resp.OK() || json.Unmarshal(resp.Body, &out) != nil || out.Code != 0 {
		return nil, errors.NewRecordCreateFailedError(resp.StatusCode, string(resp.Body))
	}
	out.Raw = json.RawMessage(resp.Body)

	c.log.Debug("Bitable record created", map[string]interface{}{
		"tableId":  tableID,
		"recordId": out.RecordID(),
	})
	return &out, nil
}
