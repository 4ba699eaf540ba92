// Package submission parses inbound submissions and writes them to the
// Applications table and the matching detail table.
package submission

import (
	"context"
	"time"

	"bitable-intake/internal/common/errors"
	commonhttp "bitable-intake/internal/common/http"
	"bitable-intake/internal/common/lark"
	"bitable-intake/internal/common/logger"
	"bitable-intake/internal/common/metrics"
	"bitable-intake/internal/common/observability"
	"bitable-intake/internal/intake/fieldmap"
	"bitable-intake/internal/intake/records"
	"bitable-intake/internal/intake/track"
)

// Gateway is the subset of the remote client a submission needs.
type Gateway interface {
	TenantAccessToken(ctx context.Context) (string, error)
	UploadFile(ctx context.Context, token string, file *fieldmap.File) (*fieldmap.Attachment, error)
	CreateRecord(ctx context.Context, token, tableID string, fields map[string]interface{}) (*lark.RecordResponse, error)
}

// Tables holds the destination table ids.
type Tables struct {
	Applications string
	Visionary    string
	Mentor       string
}

// Detail returns the detail table for t.
func (t Tables) Detail(tr track.Track) string {
	if tr == track.Visionary {
		return t.Visionary
	}
	return t.Mentor
}

// Result is the success response body.
type Result struct {
	OK                 bool                 `json:"ok"`
	ApplicationsResult *lark.RecordResponse `json:"applicationsResult"`
	DetailResult       *lark.RecordResponse `json:"detailResult"`
	Track              track.Track          `json:"-"`
}

type Service struct {
	gateway Gateway
	tables  Tables
	log     logger.Logger
}

func NewService(gateway Gateway, tables Tables, log logger.Logger) *Service {
	return &Service{gateway: gateway, tables: tables, log: log}
}

// Submit runs one submission through classification and both writes.
// The remote calls are sequential; the first failure is returned as is
// and nothing already written is rolled back.
func (s *Service) Submit(ctx context.Context, fields fieldmap.FieldMap) (result *Result, err error) {
	started := time.Now()
	t := track.None
	defer func() { s.record(t, started, err) }()

	if len(fields) == 0 {
		return nil, errors.NewEmptyPayloadError()
	}

	token, err := s.gateway.TenantAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	detected, ok := track.Detect(fields)
	if !ok {
		return nil, errors.NewTrackUndeterminedError()
	}
	t = detected

	log := s.log.WithFields(map[string]interface{}{
		"requestId": commonhttp.RequestID(ctx),
		"traceId":   observability.TraceID(ctx),
		"track":     t.String(),
	})

	if t == track.Visionary {
		if fields, err = s.attachHeadshot(ctx, token, fields); err != nil {
			return nil, err
		}
	}

	appRes, err := s.gateway.CreateRecord(ctx, token, s.tables.Applications, records.BuildApplicationsFields(t, fields))
	if err != nil {
		return nil, err
	}
	applicationID := appRes.RecordID()
	if applicationID == "" {
		return nil, errors.NewMissingRecordIDError(s.tables.Applications)
	}

	detailFields, err := records.BuildDetailFields(t, applicationID, fields)
	if err != nil {
		return nil, err
	}

	detailRes, err := s.gateway.CreateRecord(ctx, token, s.tables.Detail(t), detailFields)
	if err != nil {
		log.Warn("Detail write failed after Application write", map[string]interface{}{
			"applicationId": applicationID,
		})
		return nil, err
	}

	log.Info("Submission recorded", map[string]interface{}{
		"applicationId": applicationID,
		"detailId":      detailRes.RecordID(),
	})

	return &Result{
		OK:                 true,
		ApplicationsResult: appRes,
		DetailResult:       detailRes,
		Track:              t,
	}, nil
}

// attachHeadshot uploads a headshot file, if any, and returns a copy of
// fields with the reference under every headshot key.
func (s *Service) attachHeadshot(ctx context.Context, token string, fields fieldmap.FieldMap) (fieldmap.FieldMap, error) {
	file, ok := fieldmap.PickFile(fields, records.HeadshotKeys...)
	if !ok {
		return fields, nil
	}

	att, err := s.gateway.UploadFile(ctx, token, file)
	if err != nil {
		return nil, err
	}

	out := fields.Clone()
	for _, key := range records.HeadshotKeys {
		out[key] = []fieldmap.Attachment{*att}
	}
	return out, nil
}

func (s *Service) record(t track.Track, started time.Time, err error) {
	outcome, code := metrics.OutcomeSuccess, ""
	if err != nil {
		outcome, code = metrics.OutcomeFailure, string(errors.Normalize(err).Code)
	}
	metrics.SubmissionsTotal.WithLabelValues(t.String(), outcome, code).Inc()
	metrics.SubmissionDuration.WithLabelValues(outcome).Observe(time.Since(started).Seconds())
}
