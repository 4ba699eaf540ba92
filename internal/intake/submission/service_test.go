package submission

import (
	"context"
	"testing"

	"bitable-intake/internal/common/errors"
	"bitable-intake/internal/common/logger"
	"bitable-intake/internal/intake/fieldmap"
	"bitable-intake/internal/intake/track"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var testTables = Tables{Applications: "tblApps", Visionary: "tblVision", Mentor: "tblMentor"}

func newTestService(t *testing.T) (*Service, *MockGateway) {
	gw := new(MockGateway)
	return NewService(gw, testTables, logger.NewTestLogger(t)), gw
}

// ==========================
// Failure paths
// ==========================

func TestSubmit_EmptyPayload(t *testing.T) {
	svc, gw := newTestService(t)

	result, err := svc.Submit(context.Background(), fieldmap.FieldMap{})

	assert.Nil(t, result)
	assert.True(t, errors.HasCode(err, errors.ErrCodeEmptyPayload))
	gw.AssertNotCalled(t, "TenantAccessToken", mock.Anything)
}

func TestSubmit_TokenFailure(t *testing.T) {
	svc, gw := newTestService(t)
	gw.On("TenantAccessToken", mock.Anything).Return("", errors.NewTokenExchangeFailedError(500, "{}"))

	_, err := svc.Submit(context.Background(), fieldmap.FieldMap{"Track": "Mentor"})

	assert.True(t, errors.HasCode(err, errors.ErrCodeTokenExchangeFailed))
	gw.AssertNotCalled(t, "CreateRecord", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_TrackUndetermined(t *testing.T) {
	svc, gw := newTestService(t)
	gw.On("TenantAccessToken", mock.Anything).Return("t-abc", nil)

	_, err := svc.Submit(context.Background(), fieldmap.FieldMap{"email": "a@example.com"})

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeTrackUndetermined))
	assert.Equal(t, "Unable to determine track (Visionary or Mentor)", errors.Normalize(err).PublicMessage())
	gw.AssertNotCalled(t, "CreateRecord", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_ApplicationWriteFails_NoDetailWrite(t *testing.T) {
	svc, gw := newTestService(t)
	gw.On("TenantAccessToken", mock.Anything).Return("t-abc", nil)
	gw.On("CreateRecord", mock.Anything, "t-abc", "tblApps", mock.Anything).
		Return(nil, errors.NewRecordCreateFailedError(200, `{"code":1254045}`)).Once()

	_, err := svc.Submit(context.Background(), fieldmap.FieldMap{"Track": "Mentor", "Handle": "h"})

	assert.True(t, errors.HasCode(err, errors.ErrCodeRecordCreateFailed))
	gw.AssertNumberOfCalls(t, "CreateRecord", 1)
	gw.AssertNotCalled(t, "CreateRecord", mock.Anything, mock.Anything, "tblMentor", mock.Anything)
}

func TestSubmit_MissingRecordID_NoDetailWrite(t *testing.T) {
	svc, gw := newTestService(t)
	gw.On("TenantAccessToken", mock.Anything).Return("t-abc", nil)
	gw.On("CreateRecord", mock.Anything, "t-abc", "tblApps", mock.Anything).Return(recordResponse(""), nil).Once()

	_, err := svc.Submit(context.Background(), fieldmap.FieldMap{"Track": "Mentor"})

	assert.True(t, errors.HasCode(err, errors.ErrCodeMissingRecordID))
	gw.AssertNumberOfCalls(t, "CreateRecord", 1)
}

func TestSubmit_DetailWriteFails_ApplicationKept(t *testing.T) {
	svc, gw := newTestService(t)
	gw.On("TenantAccessToken", mock.Anything).Return("t-abc", nil)
	gw.On("CreateRecord", mock.Anything, "t-abc", "tblApps", mock.Anything).Return(recordResponse("recApp"), nil).Once()
	gw.On("CreateRecord", mock.Anything, "t-abc", "tblMentor", mock.Anything).
		Return(nil, errors.NewRecordCreateFailedError(400, "bad")).Once()

	_, err := svc.Submit(context.Background(), fieldmap.FieldMap{"Track": "Mentor"})

	assert.True(t, errors.HasCode(err, errors.ErrCodeRecordCreateFailed))
	gw.AssertExpectations(t)
}

// ==========================
// Success paths
// ==========================

func TestSubmit_Mentor(t *testing.T) {
	svc, gw := newTestService(t)
	gw.On("TenantAccessToken", mock.Anything).Return("t-abc", nil)
	gw.On("CreateRecord", mock.Anything, "t-abc", "tblApps", map[string]interface{}{
		"Track":  "Mentor",
		"Status": "Submitted",
	}).Return(recordResponse("recApp"), nil).Once()
	gw.On("CreateRecord", mock.Anything, "t-abc", "tblMentor", mock.Anything).Return(recordResponse("recMentor"), nil).Once()

	result, err := svc.Submit(context.Background(), fieldmap.FieldMap{
		"track":          "mentor",
		"handle":         "@ada",
		"Follower Count": "1200",
		"tools":          "Figma, Go",
	})
	require.NoError(t, err)

	assert.True(t, result.OK)
	assert.Equal(t, track.Mentor, result.Track)
	assert.Equal(t, "recApp", result.ApplicationsResult.RecordID())
	assert.Equal(t, "recMentor", result.DetailResult.RecordID())

	detail := gw.Calls[len(gw.Calls)-1].Arguments.Get(3).(map[string]interface{})
	assert.Equal(t, map[string]interface{}{
		"Application ID": "recApp",
		"Handle":         "@ada",
		"Follower Count": float64(1200),
		"Tools":          []string{"Figma", "Go"},
	}, detail)
	gw.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_IndicatorPrecedence(t *testing.T) {
	svc, gw := newTestService(t)
	gw.On("TenantAccessToken", mock.Anything).Return("t-abc", nil)
	gw.On("CreateRecord", mock.Anything, "t-abc", "tblApps", map[string]interface{}{
		"Track":  "Visionary",
		"Status": "Submitted",
	}).Return(recordResponse("recApp"), nil).Once()
	gw.On("CreateRecord", mock.Anything, "t-abc", "tblVision", map[string]interface{}{
		"Application ID": "recApp",
		"Full Name":      "A",
	}).Return(recordResponse("recVision"), nil).Once()

	result, err := svc.Submit(context.Background(), fieldmap.FieldMap{"Full Name": "A", "Handle": "b"})
	require.NoError(t, err)

	assert.Equal(t, track.Visionary, result.Track)
	gw.AssertExpectations(t)
}

func TestSubmit_VisionaryHeadshotUpload(t *testing.T) {
	svc, gw := newTestService(t)
	file := &fieldmap.File{Name: "me.png", ContentType: "image/png", Size: 3, Data: []byte("png")}
	att := &fieldmap.Attachment{FileToken: "boxFile", Name: "me.png"}

	gw.On("TenantAccessToken", mock.Anything).Return("t-abc", nil)
	gw.On("UploadFile", mock.Anything, "t-abc", file).Return(att, nil).Once()
	gw.On("CreateRecord", mock.Anything, "t-abc", "tblApps", mock.Anything).Return(recordResponse("recApp"), nil).Once()
	gw.On("CreateRecord", mock.Anything, "t-abc", "tblVision", map[string]interface{}{
		"Application ID": "recApp",
		"Full Name":      "Grace",
	}).Return(recordResponse("recVision"), nil).Once()

	input := fieldmap.FieldMap{"Track": "Visionary", "fullName": "Grace", "headshot": file}
	_, err := svc.Submit(context.Background(), input)
	require.NoError(t, err)

	gw.AssertExpectations(t)
	assert.Same(t, file, input["headshot"])
	assert.NotContains(t, input, "Headshot")
}

func TestSubmit_VisionaryUploadFailure(t *testing.T) {
	svc, gw := newTestService(t)
	file := &fieldmap.File{Name: "me.png", Data: []byte("png")}

	gw.On("TenantAccessToken", mock.Anything).Return("t-abc", nil)
	gw.On("UploadFile", mock.Anything, "t-abc", file).Return(nil, errors.NewFileUploadFailedError(200, `{"code":0,"data":{}}`))

	_, err := svc.Submit(context.Background(), fieldmap.FieldMap{"Track": "Visionary", "Headshot": file})

	assert.True(t, errors.HasCode(err, errors.ErrCodeFileUploadFailed))
	gw.AssertNotCalled(t, "CreateRecord", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_MentorIgnoresHeadshotFile(t *testing.T) {
	svc, gw := newTestService(t)
	gw.On("TenantAccessToken", mock.Anything).Return("t-abc", nil)
	gw.On("CreateRecord", mock.Anything, "t-abc", mock.Anything, mock.Anything).Return(recordResponse("rec"), nil).Twice()

	_, err := svc.Submit(context.Background(), fieldmap.FieldMap{
		"Track":    "Mentor",
		"Headshot": &fieldmap.File{Name: "x.png"},
	})
	require.NoError(t, err)
	gw.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything)
}

func TestTables_Detail(t *testing.T) {
	assert.Equal(t, "tblVision", testTables.Detail(track.Visionary))
	assert.Equal(t, "tblMentor", testTables.Detail(track.Mentor))
}

func TestSubmit_LogsCarryTraceID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	gw := new(MockGateway)
	svc := NewService(gw, testTables, logger.NewZapAdapter(zap.New(core)))
	gw.On("TenantAccessToken", mock.Anything).Return("t-abc", nil)
	gw.On("CreateRecord", mock.Anything, "t-abc", mock.Anything, mock.Anything).Return(recordResponse("rec"), nil).Twice()

	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0x0a},
		SpanID:  trace.SpanID{0x01},
	}))
	_, err := svc.Submit(ctx, fieldmap.FieldMap{"Track": "Mentor"})
	require.NoError(t, err)

	recorded := logs.FilterMessage("Submission recorded").All()
	require.Len(t, recorded, 1)
	assert.Equal(t, "0a000000000000000000000000000000", recorded[0].ContextMap()["traceId"])
}
