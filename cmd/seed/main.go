package main

import (
	"context"
	"os"
	"time"

	"github.com/levenlabs/go-lflag"
	"github.com/shopspring/decimal"

	"github.com/pvece/pvece/pkg/log"
	"github.com/pvece/pvece/pkg/storage"
	"github.com/pvece/pvece/pkg/types"
)

func main() {
	os.Setenv("FIRESTORE_EMULATOR_HOST", "127.0.0.1:8087")
	db := storage.Configured()
	lflag.Configure()

	ctx := context.Background()
	log.Ctx(ctx).InfoContext(ctx, "seeding demo project")

	now := time.Now().UTC()
	project := types.Project{
		ID:             "demo",
		Name:           "Demo bus depot",
		Location:       "Hangzhou",
		TransformerKva: decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := db.CreateProject(ctx, project); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to seed project", "error", err)
		os.Exit(1)
	}

	pv := types.PvConfig{InstalledCapacityKw: decimal.NewFromInt(100)}
	if err := db.SetPvConfig(ctx, project.ID, pv); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to seed pv config", "error", err)
		os.Exit(1)
	}

	// weekday operation with an overnight depot window, weekend idle
	scheduleJSON := `[
		{"day":"Mon","isOperating":true,"chargeableRanges":[{"start":"21:00","end":"06:00","minSoc":90}],"departureCount":8},
		{"day":"Tue","isOperating":true,"chargeableRanges":[{"start":"21:00","end":"06:00","minSoc":90}],"departureCount":8},
		{"day":"Wed","isOperating":true,"chargeableRanges":[{"start":"21:00","end":"06:00","minSoc":90}],"departureCount":8},
		{"day":"Thu","isOperating":true,"chargeableRanges":[{"start":"21:00","end":"06:00","minSoc":90}],"departureCount":8},
		{"day":"Fri","isOperating":true,"chargeableRanges":[{"start":"21:00","end":"06:00","minSoc":90}],"departureCount":8}
	]`
	fleet := types.FleetRecord{
		FleetConfig: types.FleetConfig{
			VehicleCount:      8,
			BatteryKwh:        decimal.NewFromInt(100),
			EnableTimeControl: true,
			Piles:             types.PileCounts{Fast: 2, Slow: 6, UltraFast: 1},
			V2gPiles:          types.PileCounts{Fast: 2},
		},
		WeeklyScheduleJSON: scheduleJSON,
	}
	if err := db.SetFleetConfig(ctx, project.ID, fleet); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to seed fleet config", "error", err)
		os.Exit(1)
	}

	tariff := []types.TariffPeriodRecord{
		{
			PeriodType:     types.PeriodPeak,
			TimeRangesJSON: `[{"start":"08:00","end":"11:00"},{"start":"17:00","end":"21:00"}]`,
			Price:          decimal.RequireFromString("1.2"),
			Country:        "CN",
		},
		{
			PeriodType:     types.PeriodNormal,
			TimeRangesJSON: `[{"start":"11:00","end":"17:00"},{"start":"21:00","end":"23:00"}]`,
			Price:          decimal.RequireFromString("0.7"),
			Country:        "CN",
		},
		{
			PeriodType:     types.PeriodValley,
			TimeRangesJSON: `[{"start":"23:00","end":"08:00"}]`,
			Price:          decimal.RequireFromString("0.3"),
			Country:        "CN",
		},
	}
	if err := db.ReplaceTariff(ctx, project.ID, tariff); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to seed tariff", "error", err)
		os.Exit(1)
	}

	log.Ctx(ctx).InfoContext(ctx, "seeded demo project successfully")
}
