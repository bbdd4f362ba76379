package tools

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
)

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Ask(ctx context.Context, q models.Question) (*models.AnswerResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnswerResult), args.Error(1)
}

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) GetFile(ctx context.Context, fileID uuid.UUID) (*models.FileInfo, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FileInfo), args.Error(1)
}

func (m *mockCatalog) ListColumns(ctx context.Context, fileID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockCatalog) ListFilesInProject(ctx context.Context, projectID uuid.UUID) ([]models.FileInfo, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FileInfo), args.Error(1)
}

type mockProfiles struct {
	mock.Mock
}

func (m *mockProfiles) GetOrBuildFileProfile(ctx context.Context, fileID uuid.UUID) (*models.FileProfile, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FileProfile), args.Error(1)
}
