package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/levenlabs/go-lflag"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pvece/pvece/pkg/log"
	"github.com/pvece/pvece/pkg/types"
)

// FirestoreProvider implements the Database interface using Google Cloud
// Firestore. Each project is a document under "projects" with its
// configurations and results in sub-collections, all stored as JSON string
// blobs for portability.
type FirestoreProvider struct {
	client    *firestore.Client
	projectID string
	database  string
}

// configuredFirestore sets up the Firestore provider.
// It registers flags for configuration.
func configuredFirestore() *FirestoreProvider {
	projectID := lflag.String("firestore-project-id", "", "Google Cloud Project ID for Firestore")
	database := lflag.String("firestore-database", "", "Google Cloud Firestore Database")
	emulator := lflag.String("firestore-emulator", "", "Use Firestore emulator")

	f := &FirestoreProvider{}

	lflag.Do(func() {
		f.projectID = *projectID
		f.database = *database

		// set this because that's how firestore client expects it
		if *emulator != "" {
			os.Setenv("FIRESTORE_EMULATOR_HOST", *emulator)
		}
	})

	return f
}

// Validate checks if the provider is properly configured.
func (f *FirestoreProvider) Validate() error {
	// Project ID verification could be here, but we allow empty if inferred.
	return nil
}

// Init initializes the Firestore client.
// This must be called before using the provider methods.
func (f *FirestoreProvider) Init(ctx context.Context) error {
	projectID := f.projectID
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}
	database := f.database
	if database == "" {
		database = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, database)
	if err != nil {
		return fmt.Errorf("failed to create firestore client (project=%s, database=%s): %w", projectID, database, err)
	}
	f.client = client
	return nil
}

// Close closes the Firestore client connection.
func (f *FirestoreProvider) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func (f *FirestoreProvider) projectDoc(projectID string) (*firestore.DocumentRef, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID cannot be empty")
	}
	return f.client.Collection("projects").Doc(projectID), nil
}

func (f *FirestoreProvider) getCollection(projectID, name string) (*firestore.CollectionRef, error) {
	doc, err := f.projectDoc(projectID)
	if err != nil {
		return nil, err
	}
	return doc.Collection(name), nil
}

// decodeBlob unmarshals the "json" field of a document into v.
func decodeBlob(doc *firestore.DocumentSnapshot, v any) error {
	val, err := doc.DataAt("json")
	if err != nil {
		return fmt.Errorf("document %s missing 'json' field: %w", doc.Ref.ID, err)
	}
	jsonStr, ok := val.(string)
	if !ok {
		return fmt.Errorf("document %s 'json' field is not a string", doc.Ref.ID)
	}
	if err := json.Unmarshal([]byte(jsonStr), v); err != nil {
		return fmt.Errorf("failed to unmarshal document %s: %w", doc.Ref.ID, err)
	}
	return nil
}

// CreateProject creates a new project document in the "projects" collection.
// It fails if a project with the same ID already exists.
func (f *FirestoreProvider) CreateProject(ctx context.Context, project types.Project) error {
	jsonBytes, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("failed to marshal project %s: %w", project.ID, err)
	}
	doc, err := f.projectDoc(project.ID)
	if err != nil {
		return err
	}
	_, err = doc.Create(ctx, map[string]interface{}{
		"json":      string(jsonBytes),
		"createdAt": project.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to create project %s: %w", project.ID, err)
	}
	return nil
}

// GetProject retrieves a project from the "projects" collection.
func (f *FirestoreProvider) GetProject(ctx context.Context, projectID string) (types.Project, error) {
	doc, err := f.projectDoc(projectID)
	if err != nil {
		return types.Project{}, err
	}
	snap, err := doc.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return types.Project{}, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
		}
		return types.Project{}, fmt.Errorf("failed to get project %s: %w", projectID, err)
	}

	var p types.Project
	if err := decodeBlob(snap, &p); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "bad project doc", slog.String("projectID", projectID), slog.Any("err", err))
		return types.Project{}, err
	}
	return p, nil
}

// ListProjects retrieves all projects from the "projects" collection.
func (f *FirestoreProvider) ListProjects(ctx context.Context) ([]types.Project, error) {
	iter := f.client.Collection("projects").Documents(ctx)
	defer iter.Stop()

	var projects []types.Project
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating projects: %w", err)
		}

		var p types.Project
		if err := decodeBlob(doc, &p); err != nil {
			log.Ctx(ctx).WarnContext(ctx, "skipping bad project doc", slog.String("projectID", doc.Ref.ID), slog.Any("err", err))
			// Skip malformed documents
			continue
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// UpdateProject updates an existing project document.
func (f *FirestoreProvider) UpdateProject(ctx context.Context, project types.Project) error {
	jsonBytes, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("failed to marshal project %s: %w", project.ID, err)
	}
	doc, err := f.projectDoc(project.ID)
	if err != nil {
		return err
	}
	_, err = doc.Set(ctx, map[string]interface{}{
		"json": string(jsonBytes),
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update project %s: %w", project.ID, err)
	}
	return nil
}

// DeleteProject deletes a project document and its configuration and tariff
// sub-collections. Result documents are kept; they carry their own copy of
// the inputs.
func (f *FirestoreProvider) DeleteProject(ctx context.Context, projectID string) error {
	doc, err := f.projectDoc(projectID)
	if err != nil {
		return err
	}
	for _, name := range []string{"pv_config", "fleet_config", "tariff"} {
		if err := f.deleteCollection(ctx, doc.Collection(name)); err != nil {
			return fmt.Errorf("failed to clear %s of project %s: %w", name, projectID, err)
		}
	}
	if _, err := doc.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete project %s: %w", projectID, err)
	}
	return nil
}

func (f *FirestoreProvider) deleteCollection(ctx context.Context, coll *firestore.CollectionRef) error {
	iter := coll.Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return err
		}
	}
}

// getConfig reads the single "config" document of the named sub-collection.
func (f *FirestoreProvider) getConfig(ctx context.Context, projectID, name string, v any) error {
	coll, err := f.getCollection(projectID, name)
	if err != nil {
		return err
	}
	snap, err := coll.Doc("config").Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%w: %s of project %s", ErrConfigNotFound, name, projectID)
		}
		return fmt.Errorf("failed to fetch %s of project %s: %w", name, projectID, err)
	}
	if err := decodeBlob(snap, v); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "bad config doc",
			slog.String("projectID", projectID), slog.String("config", name), slog.Any("err", err))
		return err
	}
	return nil
}

// setConfig saves v as the single "config" document of the named
// sub-collection, stored as a JSON string for portability.
func (f *FirestoreProvider) setConfig(ctx context.Context, projectID, name string, v any) error {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	coll, err := f.getCollection(projectID, name)
	if err != nil {
		return err
	}
	_, err = coll.Doc("config").Set(ctx, map[string]interface{}{
		"json": string(jsonBytes),
	})
	if err != nil {
		return fmt.Errorf("failed to save %s of project %s: %w", name, projectID, err)
	}
	return nil
}

// GetPvConfig retrieves the photovoltaic configuration of a project.
func (f *FirestoreProvider) GetPvConfig(ctx context.Context, projectID string) (types.PvConfig, error) {
	var cfg types.PvConfig
	if err := f.getConfig(ctx, projectID, "pv_config", &cfg); err != nil {
		return types.PvConfig{}, err
	}
	return cfg, nil
}

// SetPvConfig saves the photovoltaic configuration of a project.
func (f *FirestoreProvider) SetPvConfig(ctx context.Context, projectID string, cfg types.PvConfig) error {
	return f.setConfig(ctx, projectID, "pv_config", cfg)
}

// GetFleetConfig retrieves the fleet configuration of a project.
func (f *FirestoreProvider) GetFleetConfig(ctx context.Context, projectID string) (types.FleetRecord, error) {
	var cfg types.FleetRecord
	if err := f.getConfig(ctx, projectID, "fleet_config", &cfg); err != nil {
		return types.FleetRecord{}, err
	}
	return cfg, nil
}

// SetFleetConfig saves the fleet configuration of a project.
func (f *FirestoreProvider) SetFleetConfig(ctx context.Context, projectID string, cfg types.FleetRecord) error {
	return f.setConfig(ctx, projectID, "fleet_config", cfg)
}

// ListTariff retrieves the tariff periods of a project in insertion order.
func (f *FirestoreProvider) ListTariff(ctx context.Context, projectID string) ([]types.TariffPeriodRecord, error) {
	coll, err := f.getCollection(projectID, "tariff")
	if err != nil {
		return nil, err
	}
	iter := coll.OrderBy(firestore.DocumentID, firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var periods []types.TariffPeriodRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating tariff periods: %w", err)
		}

		var p types.TariffPeriodRecord
		if err := decodeBlob(doc, &p); err != nil {
			log.Ctx(ctx).WarnContext(ctx, "bad tariff doc",
				slog.String("projectID", projectID), slog.String("docID", doc.Ref.ID), slog.Any("err", err))
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, nil
}

// ReplaceTariff replaces every tariff period of the project in a single
// transaction: existing period documents are deleted and the new set is
// inserted with zero-padded index IDs to preserve ordering.
func (f *FirestoreProvider) ReplaceTariff(ctx context.Context, projectID string, periods []types.TariffPeriodRecord) error {
	coll, err := f.getCollection(projectID, "tariff")
	if err != nil {
		return err
	}

	err = f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(coll).GetAll()
		if err != nil {
			return fmt.Errorf("failed to read existing tariff periods: %w", err)
		}
		for _, doc := range existing {
			if err := tx.Delete(doc.Ref); err != nil {
				return err
			}
		}
		for i, p := range periods {
			jsonBytes, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("failed to marshal tariff period %d: %w", i, err)
			}
			if err := tx.Create(coll.Doc(fmt.Sprintf("%03d", i)), map[string]interface{}{
				"json": string(jsonBytes),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace tariff of project %s: %w", projectID, err)
	}
	return nil
}

// SaveResult adds a calculation result record to the "results" collection.
// The document ID combines the calculation kind and the RFC3339 timestamp
// for lexicographic ordering within a kind.
func (f *FirestoreProvider) SaveResult(ctx context.Context, projectID string, rec types.CalculationRecord) error {
	jsonBytes, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal calculation record: %w", err)
	}
	coll, err := f.getCollection(projectID, "results")
	if err != nil {
		return err
	}
	docID := fmt.Sprintf("%s-%s", rec.Kind, rec.CreatedAt.UTC().Format(time.RFC3339))
	_, err = coll.Doc(docID).Set(ctx, map[string]interface{}{
		"json":      string(jsonBytes),
		"timestamp": rec.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to save calculation result: %w", err)
	}
	return nil
}
