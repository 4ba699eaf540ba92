package submission

import (
	"context"

	"bitable-intake/internal/common/lark"
	"bitable-intake/internal/intake/fieldmap"

	"github.com/stretchr/testify/mock"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) TenantAccessToken(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) UploadFile(ctx context.Context, token string, file *fieldmap.File) (*fieldmap.Attachment, error) {
	args := m.Called(ctx, token, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fieldmap.Attachment), args.Error(1)
}

func (m *MockGateway) CreateRecord(ctx context.Context, token, tableID string, fields map[string]interface{}) (*lark.RecordResponse, error) {
	args := m.Called(ctx, token, tableID, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lark.RecordResponse), args.Error(1)
}

func recordResponse(id string) *lark.RecordResponse {
	rec := &lark.RecordResponse{Msg: "success"}
	rec.Data.Record.RecordID = id
	return rec
}
