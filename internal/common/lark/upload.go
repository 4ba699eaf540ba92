package lark

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"bitable-intake/internal/common/errors"
	"bitable-intake/internal/intake/fieldmap"

	"go.opentelemetry.io/otel/attribute"
)

// tokenExtractor pulls a file token out of one known upload response shape.
type tokenExtractor struct {
	name    string
	extract func(data map[string]interface{}) (string, bool)
}

// fileTokenExtractors are tried in order; the first hit wins.
var fileTokenExtractors = []tokenExtractor{
	{name: "data.file_token", extract: func(data map[string]interface{}) (string, bool) {
		return stringAt(data, "file_token")
	}},
	{name: "data.file.token", extract: func(data map[string]interface{}) (string, bool) {
		file, ok := data["file"].(map[string]interface{})
		if !ok {
			return "", false
		}
		return stringAt(file, "token")
	}},
	{name: "data.token", extract: func(data map[string]interface{}) (string, bool) {
		return stringAt(data, "token")
	}},
}

func stringAt(m map[string]interface{}, key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok && s != ""
}

// extractFileToken returns the token and the name of the matching shape.
func extractFileToken(data map[string]interface{}) (token, shape string, ok bool) {
	if data == nil {
		return "", "", false
	}
	for _, ex := range fileTokenExtractors {
		if token, ok := ex.extract(data); ok {
			return token, ex.name, true
		}
	}
	return "", "", false
}

type uploadResponse struct {
	Code *int                   `json:"code"`
	Msg  string                 `json:"msg"`
	Data map[string]interface{} `json:"data"`
}

// UploadFile stores file under the configured parent and returns the
// attachment reference a bitable attachment cell accepts.
func (c *Client) UploadFile(ctx context.Context, token string, file *fieldmap.File) (att *fieldmap.Attachment, err error) {
	ctx, done := c.observe(ctx, opUploadFile,
		attribute.String("file.name", file.Name),
		attribute.Int("file.size", len(file.Data)),
	)
	defer func() { done(err) }()

	body, contentType, err := c.uploadBody(file)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.DriveBaseURL+uploadPath, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Send(ctx, req)
	if err != nil {
		return nil, errors.NewTransportError(errors.ErrCodeFileUploadFailed, "Upload file", err)
	}

	var out uploadResponse
	if jsonErr := json.Unmarshal(resp.Body, &out); jsonErr != nil {
		c.log.Warn("Upload response is not JSON", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(resp.Body),
		})
		return nil, errors.NewFileUploadFailedError(resp.StatusCode, string(resp.Body))
	}

	fileToken, shape, found := extractFileToken(out.Data)
	if !resp.OK() || out.Code == nil || *out.Code != 0 || !found {
		return nil, errors.NewFileUploadFailedError(resp.StatusCode, string(resp.Body))
	}

	c.log.Debug("File uploaded", map[string]interface{}{
		"fileName": file.Name,
		"shape":    shape,
	})
	return &fieldmap.Attachment{FileToken: fileToken, Name: file.Name}, nil
}

func (c *Client) uploadBody(file *fieldmap.File) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	fields := [][2]string{
		{"file_name", file.Name},
		{"parent_type", c.cfg.UploadParentType},
		{"parent_node", c.cfg.UploadParentNode},
		{"size", strconv.Itoa(len(file.Data))},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("failed to write %s: %w", f[0], err)
		}
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(file.Name)))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", fmt.Errorf("failed to write file part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}

	return body, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
