package storage

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pvece/pvece/pkg/types"
)

func TestFirestoreProvider(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("requires a Firestore emulator; set FIRESTORE_EMULATOR_HOST")
	}

	// Use a random database for isolation
	randDB := fmt.Sprintf("test-db-%d", time.Now().UnixNano())
	f := &FirestoreProvider{
		projectID: "test-project-id",
		database:  randDB,
	}

	ctx := context.Background()
	require.NoError(t, f.Init(ctx))
	defer f.Close()

	t.Run("Validate", func(t *testing.T) {
		require.NoError(t, f.Validate())
	})

	t.Run("ProjectCRUD", func(t *testing.T) {
		project := types.Project{
			ID:             "p1",
			Name:           "Depot A",
			Location:       "Hangzhou",
			TransformerKva: decimal.NewFromInt(630),
			CreatedAt:      time.Now().UTC().Truncate(time.Second),
		}
		require.NoError(t, f.CreateProject(ctx, project))

		got, err := f.GetProject(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, project.Name, got.Name)
		assert.True(t, got.TransformerKva.Equal(project.TransformerKva))

		// creating the same ID again must fail
		assert.Error(t, f.CreateProject(ctx, project))

		project.Name = "Depot A renamed"
		require.NoError(t, f.UpdateProject(ctx, project))
		got, err = f.GetProject(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, "Depot A renamed", got.Name)

		projects, err := f.ListProjects(ctx)
		require.NoError(t, err)
		require.Len(t, projects, 1)

		require.NoError(t, f.DeleteProject(ctx, "p1"))
		_, err = f.GetProject(ctx, "p1")
		assert.ErrorIs(t, err, ErrProjectNotFound)
	})

	t.Run("EmptyProjectID", func(t *testing.T) {
		_, err := f.GetProject(ctx, "")
		assert.ErrorContains(t, err, "projectID cannot be empty")
	})

	t.Run("Configs", func(t *testing.T) {
		_, err := f.GetPvConfig(ctx, "p2")
		assert.ErrorIs(t, err, ErrConfigNotFound)

		pv := types.PvConfig{InstalledCapacityKw: decimal.NewFromInt(100)}
		require.NoError(t, f.SetPvConfig(ctx, "p2", pv))
		gotPv, err := f.GetPvConfig(ctx, "p2")
		require.NoError(t, err)
		assert.True(t, gotPv.InstalledCapacityKw.Equal(pv.InstalledCapacityKw))

		fleet := types.FleetRecord{
			FleetConfig: types.FleetConfig{
				VehicleCount: 8,
				BatteryKwh:   decimal.NewFromInt(100),
				Piles:        types.PileCounts{Fast: 2, Slow: 6},
			},
			WeeklyScheduleJSON: `[{"day":"Mon","isOperating":true}]`,
		}
		require.NoError(t, f.SetFleetConfig(ctx, "p2", fleet))
		gotFleet, err := f.GetFleetConfig(ctx, "p2")
		require.NoError(t, err)
		assert.Equal(t, 8, gotFleet.VehicleCount)
		assert.Equal(t, fleet.WeeklyScheduleJSON, gotFleet.WeeklyScheduleJSON)
	})

	t.Run("ReplaceTariff", func(t *testing.T) {
		first := []types.TariffPeriodRecord{
			{PeriodType: types.PeriodPeak, TimeRangesJSON: `[{"start":"08:00","end":"22:00"}]`, Price: decimal.RequireFromString("1.2"), Country: "CN"},
			{PeriodType: types.PeriodValley, TimeRangesJSON: `[{"start":"22:00","end":"08:00"}]`, Price: decimal.RequireFromString("0.3"), Country: "CN"},
		}
		require.NoError(t, f.ReplaceTariff(ctx, "p3", first))

		got, err := f.ListTariff(ctx, "p3")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, types.PeriodPeak, got[0].PeriodType)

		// replacing removes the old periods entirely
		second := []types.TariffPeriodRecord{
			{PeriodType: types.PeriodNormal, TimeRangesJSON: `[]`, Price: decimal.RequireFromString("0.7"), Country: "CN"},
		}
		require.NoError(t, f.ReplaceTariff(ctx, "p3", second))
		got, err = f.ListTariff(ctx, "p3")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, types.PeriodNormal, got[0].PeriodType)
	})

	t.Run("SaveResult", func(t *testing.T) {
		rec := types.CalculationRecord{
			Kind:       "sizing",
			ResultJSON: `{"essUnits":4}`,
			CreatedAt:  time.Now().UTC(),
		}
		require.NoError(t, f.SaveResult(ctx, "p4", rec))
	})
}
