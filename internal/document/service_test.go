package document_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/moumensalem/masroof/internal/document"
)

func TestService_Merge(t *testing.T) {
	uid := uuid.New()

	type testCase struct {
		name      string
		data      string
		setupMock func(m *document.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			data: `{"trans":[],"config":{"wallets":[]}}`,
			setupMock: func(m *document.MockRepository) {
				m.EXPECT().
					MergeDocument(gomock.Any(), uid, gomock.Any()).
					DoAndReturn(func(_ context.Context, uid uuid.UUID, data json.RawMessage) (*document.Document, error) {
						return &document.Document{UID: uid, Data: data}, nil
					})
			},
		},
		{
			name:    "ArrayRejected",
			data:    `[1,2,3]`,
			wantErr: document.ErrBadData,
		},
		{
			name:    "GarbageRejected",
			data:    `{"trans":`,
			wantErr: document.ErrBadData,
		},
		{
			name:    "EmptyRejected",
			data:    ``,
			wantErr: document.ErrBadData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := document.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := document.NewService(repo)
			got, err := svc.Merge(context.Background(), uid, json.RawMessage(tt.data))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, uid, got.UID)
		})
	}
}

func TestService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uid := uuid.New()
	repo := document.NewMockRepository(ctrl)
	repo.EXPECT().GetDocument(gomock.Any(), uid).Return(nil, document.ErrNotFound)

	svc := document.NewService(repo)
	_, err := svc.Get(context.Background(), uid)
	assert.ErrorIs(t, err, document.ErrNotFound)
}
