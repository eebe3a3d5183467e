package storagemock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pvece/pvece/pkg/storage"
	"github.com/pvece/pvece/pkg/types"
)

type MockDatabase struct {
	mock.Mock
}

var _ storage.Database = (*MockDatabase)(nil)

func (m *MockDatabase) CreateProject(ctx context.Context, project types.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockDatabase) GetProject(ctx context.Context, projectID string) (types.Project, error) {
	args := m.Called(ctx, projectID)
	if len(args) > 0 {
		return args.Get(0).(types.Project), args.Error(1)
	}
	return types.Project{}, nil
}

func (m *MockDatabase) ListProjects(ctx context.Context) ([]types.Project, error) {
	args := m.Called(ctx)
	if len(args) > 0 {
		return args.Get(0).([]types.Project), args.Error(1)
	}
	return nil, nil
}

func (m *MockDatabase) UpdateProject(ctx context.Context, project types.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockDatabase) DeleteProject(ctx context.Context, projectID string) error {
	args := m.Called(ctx, projectID)
	return args.Error(0)
}

func (m *MockDatabase) GetPvConfig(ctx context.Context, projectID string) (types.PvConfig, error) {
	args := m.Called(ctx, projectID)
	if len(args) > 0 {
		return args.Get(0).(types.PvConfig), args.Error(1)
	}
	return types.PvConfig{}, nil
}

func (m *MockDatabase) SetPvConfig(ctx context.Context, projectID string, cfg types.PvConfig) error {
	args := m.Called(ctx, projectID, cfg)
	return args.Error(0)
}

func (m *MockDatabase) GetFleetConfig(ctx context.Context, projectID string) (types.FleetRecord, error) {
	args := m.Called(ctx, projectID)
	if len(args) > 0 {
		return args.Get(0).(types.FleetRecord), args.Error(1)
	}
	return types.FleetRecord{}, nil
}

func (m *MockDatabase) SetFleetConfig(ctx context.Context, projectID string, cfg types.FleetRecord) error {
	args := m.Called(ctx, projectID, cfg)
	return args.Error(0)
}

func (m *MockDatabase) ListTariff(ctx context.Context, projectID string) ([]types.TariffPeriodRecord, error) {
	args := m.Called(ctx, projectID)
	if len(args) > 0 {
		return args.Get(0).([]types.TariffPeriodRecord), args.Error(1)
	}
	return nil, nil
}

func (m *MockDatabase) ReplaceTariff(ctx context.Context, projectID string, periods []types.TariffPeriodRecord) error {
	args := m.Called(ctx, projectID, periods)
	return args.Error(0)
}

func (m *MockDatabase) SaveResult(ctx context.Context, projectID string, rec types.CalculationRecord) error {
	args := m.Called(ctx, projectID, rec)
	return args.Error(0)
}

func (m *MockDatabase) Close() error {
	args := m.Called()
	return args.Error(0)
}
