package submission

import (
	"context"
	"net/http"

	"bitable-intake/internal/common/errors"
	commonhttp "bitable-intake/internal/common/http"
	"bitable-intake/internal/common/logger"
	"bitable-intake/internal/intake/fieldmap"
)

// Submitter processes a parsed submission.
type Submitter interface {
	Submit(ctx context.Context, fields fieldmap.FieldMap) (*Result, error)
}

// Handler serves POST /submit.
type Handler struct {
	submitter    Submitter
	maxBodyBytes int64
	log          logger.Logger
}

func NewHandler(submitter Submitter, maxBodyBytes int64, log logger.Logger) *Handler {
	return &Handler{submitter: submitter, maxBodyBytes: maxBodyBytes, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	result, err := h.handle(ctx, r)
	if err != nil {
		std := errors.Normalize(err)
		h.log.WithError(err).Error("Submission failed", map[string]interface{}{
			"requestId": commonhttp.RequestID(ctx),
			"code":      std.Code,
			"category":  errors.GetErrorCategory(std.Code),
			"retryable": std.Retryable,
		})
		commonhttp.WriteError(w, errors.HTTPStatus(std.Code), std.PublicMessage())
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handle(ctx context.Context, r *http.Request) (*Result, error) {
	fields, err := ParseRequest(r)
	if err != nil {
		return nil, err
	}
	return h.submitter.Submit(ctx, fields)
}
