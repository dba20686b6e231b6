package commands

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/keywarden/keywarden/internal/crypto/domain"
)

type mockDekUseCase struct {
	mock.Mock
}

func (m *mockDekUseCase) LoadKeyring(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockDekUseCase) Create(ctx context.Context, name string) (*cryptoDomain.Dek, error) {
	args := m.Called(ctx, name)
	if dek := args.Get(0); dek != nil {
		return dek.(*cryptoDomain.Dek), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDekUseCase) Get(ctx context.Context, dekID uint32) (*cryptoDomain.Dek, error) {
	args := m.Called(ctx, dekID)
	if dek := args.Get(0); dek != nil {
		return dek.(*cryptoDomain.Dek), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDekUseCase) List(ctx context.Context) ([]*cryptoDomain.Dek, error) {
	args := m.Called(ctx)
	if deks := args.Get(0); deks != nil {
		return deks.([]*cryptoDomain.Dek), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDekUseCase) Delete(ctx context.Context, dekID uint32) error {
	args := m.Called(ctx, dekID)
	return args.Error(0)
}

func (m *mockDekUseCase) RotateKek(
	ctx context.Context,
	newKekID, oldKekID string,
) (*cryptoDomain.RotationResult, error) {
	args := m.Called(ctx, newKekID, oldKekID)
	if result := args.Get(0); result != nil {
		return result.(*cryptoDomain.RotationResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func testIO() (CommandIO, *bytes.Buffer) {
	var buf bytes.Buffer
	return CommandIO{Reader: bytes.NewReader(nil), Writer: &buf}, &buf
}

func TestRunCreateDek(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("text output", func(t *testing.T) {
		mockUseCase := &mockDekUseCase{}
		mockUseCase.On("Create", ctx, "primary").Return(
			&cryptoDomain.Dek{ID: 1, Name: "primary", KekID: "kek-1"}, nil)

		io, buf := testIO()
		require.NoError(t, RunCreateDek(ctx, mockUseCase, logger, io, "primary", "text"))

		assert.Contains(t, buf.String(), "DEK created")
		assert.Contains(t, buf.String(), "primary")
		assert.Contains(t, buf.String(), "kek-1")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json output", func(t *testing.T) {
		mockUseCase := &mockDekUseCase{}
		mockUseCase.On("Create", ctx, "backup").Return(
			&cryptoDomain.Dek{ID: 2, Name: "backup", KekID: "kek-1"}, nil)

		io, buf := testIO()
		require.NoError(t, RunCreateDek(ctx, mockUseCase, logger, io, "backup", "json"))

		assert.Contains(t, buf.String(), `"name": "backup"`)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("use case error", func(t *testing.T) {
		mockUseCase := &mockDekUseCase{}
		mockUseCase.On("Create", ctx, "primary").Return(nil, errors.New("kms unavailable"))

		io, _ := testIO()
		err := RunCreateDek(ctx, mockUseCase, logger, io, "primary", "text")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create dek")
	})
}
