package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"payfile-synth/internal/domain"
	"payfile-synth/internal/logger"
	"payfile-synth/internal/usecase"
	mock_usecase "payfile-synth/internal/usecase/mocks"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 19, 8, 30, 15, 0, time.UTC)

func newUseCase(t *testing.T, store usecase.FileStore, opts ...usecase.Option) *usecase.GenerationUseCase {
	t.Helper()
	opts = append([]usecase.Option{usecase.WithClock(func() time.Time { return fixedNow })}, opts...)
	uc, err := usecase.NewGenerationUseCase(store, logger.Discard(), opts...)
	require.NoError(t, err)
	return uc
}

func TestGenerationUseCase_Generate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name         string
		req          domain.GenerationRequest
		wantFilename string
		wantLines    int
		wantValid    bool
	}{
		{
			name:         "single SDDirect row without optional columns",
			req:          domain.GenerationRequest{Format: domain.FormatSDDirect, RowCount: 1},
			wantFilename: "SDDirect_06_x_1_NH_V_20261019T083015.csv",
			wantLines:    1,
			wantValid:    true,
		},
		{
			name:         "SDDirect with header and invalid rows",
			req:          domain.GenerationRequest{Format: domain.FormatSDDirect, RowCount: 10, IncludeHeader: true, InjectInvalidRows: true, OptionalColumns: domain.ColumnSelection{All: true}},
			wantFilename: "SDDirect_11_x_10_H_I_20261019T083015.csv",
			wantLines:    11,
		},
		{
			name:         "wide Bacs18 ignores header flag",
			req:          domain.GenerationRequest{Format: domain.FormatBacs18PaymentLines, RowCount: 3, WidthVariant: domain.WidthWide, IncludeHeader: true},
			wantFilename: "Bacs18PaymentLines_12_x_3_NH_V_20261019T083015.txt",
			wantLines:    3,
			wantValid:    true,
		},
		{
			name:         "EaziPay",
			req:          domain.GenerationRequest{Format: domain.FormatEaziPay, RowCount: 5, DateFormat: domain.DateFormatSlashed},
			wantFilename: "EaziPay_14_x_5_NH_V_20261019T083015.csv",
			wantLines:    5,
			wantValid:    true,
		},
	}

	uc := newUseCase(t, mock_usecase.NewMockFileStore(ctrl))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := uc.Generate(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFilename, got.Filename)
			assert.Len(t, strings.Split(got.Content, "\n"), tt.wantLines)
			assert.Equal(t, tt.wantValid, got.Meta.IsValidBatch)
			assert.Equal(t, tt.req.RowCount, got.Meta.RowCount)
		})
	}
}

func TestGenerationUseCase_Generate_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name    string
		req     domain.GenerationRequest
		opts    []usecase.Option
		wantErr error
	}{
		{
			name:    "zero rows",
			req:     domain.GenerationRequest{Format: domain.FormatSDDirect, RowCount: 0},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name:    "unknown format",
			req:     domain.GenerationRequest{Format: "Standard18", RowCount: 1},
			wantErr: domain.ErrUnsupportedFormat,
		},
		{
			name:    "unknown date format",
			req:     domain.GenerationRequest{Format: domain.FormatEaziPay, RowCount: 1, DateFormat: "MM/DD/YYYY"},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name:    "above max rows",
			req:     domain.GenerationRequest{Format: domain.FormatSDDirect, RowCount: 11},
			opts:    []usecase.Option{usecase.WithMaxRows(10)},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name: "holiday table missing",
			req:  domain.GenerationRequest{Format: domain.FormatEaziPay, RowCount: 5},
			opts: []usecase.Option{usecase.WithClock(func() time.Time {
				return time.Date(2035, 3, 1, 0, 0, 0, 0, time.UTC)
			})},
			wantErr: domain.ErrHolidayTableMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := newUseCase(t, mock_usecase.NewMockFileStore(ctrl), tt.opts...)
			got, err := uc.Generate(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, got)
		})
	}
}

func TestGenerationUseCase_Generate_Deterministic(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	req := domain.GenerationRequest{Format: domain.FormatEaziPay, RowCount: 50, InjectInvalidRows: true}

	first, err := newUseCase(t, mock_usecase.NewMockFileStore(ctrl), usecase.WithSeed(7)).Generate(context.Background(), req)
	require.NoError(t, err)
	second, err := newUseCase(t, mock_usecase.NewMockFileStore(ctrl), usecase.WithSeed(7)).Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := newUseCase(t, mock_usecase.NewMockFileStore(ctrl), usecase.WithSeed(8)).Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.Filename, other.Filename, "filename depends only on metadata and clock")
	assert.NotEqual(t, first.Content, other.Content)
}

func TestGenerationUseCase_Generate_CancelledContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newUseCase(t, mock_usecase.NewMockFileStore(ctrl)).Generate(ctx, domain.GenerationRequest{Format: domain.FormatSDDirect, RowCount: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerationUseCase_GenerateAndStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	storeErr := errors.New("disk full")
	req := domain.GenerationRequest{Format: domain.FormatSDDirect, RowCount: 2}

	tests := []struct {
		name      string
		req       domain.GenerationRequest
		mockSetup func(store *mock_usecase.MockFileStore)
		wantErr   error
	}{
		{
			name: "stored",
			req:  req,
			mockSetup: func(store *mock_usecase.MockFileStore) {
				store.EXPECT().
					Save(gomock.Any(), "client-1", gomock.AssignableToTypeOf(&domain.GeneratedFile{})).
					DoAndReturn(func(_ context.Context, ns string, f *domain.GeneratedFile) (domain.StoredFile, error) {
						return domain.StoredFile{Namespace: ns, Name: f.Filename, Size: int64(len(f.Content))}, nil
					})
			},
		},
		{
			name: "store failure",
			req:  req,
			mockSetup: func(store *mock_usecase.MockFileStore) {
				store.EXPECT().Save(gomock.Any(), "client-1", gomock.Any()).Return(domain.StoredFile{}, storeErr)
			},
			wantErr: storeErr,
		},
		{
			name:      "invalid request never reaches the store",
			req:       domain.GenerationRequest{Format: domain.FormatSDDirect},
			mockSetup: func(store *mock_usecase.MockFileStore) {},
			wantErr:   domain.ErrInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mock_usecase.NewMockFileStore(ctrl)
			tt.mockSetup(store)

			file, stored, err := newUseCase(t, store).GenerateAndStore(context.Background(), tt.req, "client-1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, file)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "client-1", stored.Namespace)
			assert.Equal(t, file.Filename, stored.Name)
			assert.Equal(t, int64(len(file.Content)), stored.Size)
		})
	}
}

func TestGenerationUseCase_ListFiles(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock_usecase.NewMockFileStore(ctrl)
	files := []domain.StoredFile{{Namespace: "ns", Name: "a.csv"}}
	store.EXPECT().List(gomock.Any(), "ns").Return(files, nil)
	store.EXPECT().List(gomock.Any(), "..").Return(nil, domain.ErrInvalidPath)

	uc := newUseCase(t, store)
	got, err := uc.ListFiles(context.Background(), "ns")
	require.NoError(t, err)
	assert.Equal(t, files, got)

	_, err = uc.ListFiles(context.Background(), "..")
	assert.ErrorIs(t, err, domain.ErrInvalidPath)
}

func TestGenerationUseCase_PreviewFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rows := [][]string{{"a", "b"}}
	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{name: "default limit", limit: 0, wantLimit: usecase.DefaultPreviewRows},
		{name: "explicit limit", limit: 5, wantLimit: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mock_usecase.NewMockFileStore(ctrl)
			store.EXPECT().ReadRows(gomock.Any(), "ns", "a.csv", tt.wantLimit).Return(rows, nil)

			got, err := newUseCase(t, store).PreviewFile(context.Background(), "ns", "a.csv", tt.limit)
			require.NoError(t, err)
			assert.Equal(t, rows, got)
		})
	}
}

func TestGenerationUseCase_Formats(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	infos := newUseCase(t, mock_usecase.NewMockFileStore(ctrl)).Formats()
	require.Len(t, infos, 3)
	assert.Equal(t, domain.FormatBacs18PaymentLines, infos[0].Format)
	assert.Equal(t, "txt", infos[0].Extension)
	assert.Equal(t, domain.FormatSDDirect, infos[2].Format)
	assert.True(t, infos[2].SupportsHeader)
}
