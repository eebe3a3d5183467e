package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/levenlabs/go-lflag"

	"github.com/pvece/pvece/pkg/types"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	// ErrConfigNotFound marks a project sub-configuration that was never saved.
	ErrConfigNotFound = errors.New("configuration not found")
)

// Database defines the interface for persisting projects, their
// configurations and calculation results.
type Database interface {
	// Projects
	CreateProject(ctx context.Context, project types.Project) error
	GetProject(ctx context.Context, projectID string) (types.Project, error)
	ListProjects(ctx context.Context) ([]types.Project, error)
	UpdateProject(ctx context.Context, project types.Project) error
	DeleteProject(ctx context.Context, projectID string) error

	// Per-project configuration
	GetPvConfig(ctx context.Context, projectID string) (types.PvConfig, error)
	SetPvConfig(ctx context.Context, projectID string, cfg types.PvConfig) error
	GetFleetConfig(ctx context.Context, projectID string) (types.FleetRecord, error)
	SetFleetConfig(ctx context.Context, projectID string, cfg types.FleetRecord) error

	// Tariff
	ListTariff(ctx context.Context, projectID string) ([]types.TariffPeriodRecord, error)
	// ReplaceTariff atomically replaces every tariff period of the project.
	ReplaceTariff(ctx context.Context, projectID string, periods []types.TariffPeriodRecord) error

	// Results
	SaveResult(ctx context.Context, projectID string, rec types.CalculationRecord) error

	// Lifecycle
	Close() error
}

// Configured sets up the Storage provider based on flags.
func Configured() Database {
	provider := lflag.String("storage-provider", "firestore", "Storage provider to use (available: firestore)")

	var p struct{ Database }

	fs := configuredFirestore()

	lflag.Do(func() {
		switch *provider {
		case "firestore":
			if err := fs.Validate(); err != nil {
				panic(fmt.Sprintf("firestore validation failed: %v", err))
			}
			p.Database = fs
			if err := fs.Init(context.Background()); err != nil {
				panic(fmt.Sprintf("firestore init failed: %v", err))
			}
		default:
			panic(fmt.Sprintf("unknown storage provider: %s", *provider))
		}
	})

	return &p
}
