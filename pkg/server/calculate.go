package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pvece/pvece/pkg/log"
	"github.com/pvece/pvece/pkg/types"
)

const defaultCountry = "CN"

// loadFleet fetches the fleet configuration and decodes the schedule blob.
// Legacy blobs that no longer parse degrade to an empty schedule instead of
// failing the calculation.
func (s *Server) loadFleet(ctx context.Context, projectID string) (types.FleetConfig, types.WeeklySchedule, error) {
	rec, err := s.storage.GetFleetConfig(ctx, projectID)
	if err != nil {
		return types.FleetConfig{}, nil, err
	}
	schedule, err := types.ParseWeeklySchedule(rec.WeeklyScheduleJSON)
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "unparseable weekly schedule, using empty schedule",
			slog.String("projectID", projectID), slog.Any("error", err))
		schedule = nil
	}
	return rec.FleetConfig, schedule, nil
}

// loadTariff converts the stored tariff period records into TOU periods and
// returns the country the tariff is configured for. Records with unparseable
// time-range blobs degrade to a period with no ranges.
func (s *Server) loadTariff(ctx context.Context, projectID string) ([]types.TouPeriod, string, error) {
	records, err := s.storage.ListTariff(ctx, projectID)
	if err != nil {
		return nil, "", err
	}

	country := defaultCountry
	tous := make([]types.TouPeriod, 0, len(records))
	for i, rec := range records {
		if rec.Country != "" && country == defaultCountry {
			country = rec.Country
		}
		ranges, err := types.ParseClockRanges(rec.TimeRangesJSON)
		if err != nil {
			log.Ctx(ctx).WarnContext(ctx, "unparseable tariff time ranges, period contributes to fallback only",
				slog.String("projectID", projectID), slog.Int("index", i), slog.Any("error", err))
			ranges = nil
		}
		tous = append(tous, types.TouPeriod{
			PeriodType: rec.PeriodType,
			TimeRanges: ranges,
			Price:      rec.Price,
		})
	}
	return tous, country, nil
}

// saveResult persists a calculation outcome; failures are logged but never
// fail the request that produced the result.
func (s *Server) saveResult(ctx context.Context, projectID, kind string, result any) {
	jsonBytes, err := json.Marshal(result)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to marshal calculation result",
			slog.String("projectID", projectID), slog.String("kind", kind), slog.Any("error", err))
		return
	}
	rec := types.CalculationRecord{
		Kind:       kind,
		ResultJSON: string(jsonBytes),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.storage.SaveResult(ctx, projectID, rec); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to save calculation result",
			slog.String("projectID", projectID), slog.String("kind", kind), slog.Any("error", err))
	}
}

func (s *Server) handleCalculateSizing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := r.PathValue("id")

	var req types.SizingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSONError(w, "invalid sizing request: "+err.Error(), http.StatusBadRequest)
		return
	}

	project, err := s.storage.GetProject(ctx, projectID)
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	pv, err := s.storage.GetPvConfig(ctx, projectID)
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	fleet, schedule, err := s.loadFleet(ctx, projectID)
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}
	tous, country, err := s.loadTariff(ctx, projectID)
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	station := types.StationConfig{
		PvPeakPowerKw:  pv.InstalledCapacityKw,
		TransformerKva: project.TransformerKva,
		Country:        country,
	}

	res, err := s.planner.Sizing(station, fleet, schedule, tous, req)
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}
	s.saveResult(ctx, projectID, "sizing", res)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleLoadCurve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := r.PathValue("id")

	fleet, schedule, err := s.loadFleet(ctx, projectID)
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}
	tous, _, err := s.loadTariff(ctx, projectID)
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	res, err := s.planner.LoadCurve(fleet, schedule, tous)
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}
	s.saveResult(ctx, projectID, "loadcurve", res)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleProjectV2G(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := r.PathValue("id")

	fleet, schedule, err := s.loadFleet(ctx, projectID)
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}
	tous, _, err := s.loadTariff(ctx, projectID)
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	res, err := s.planner.V2G(types.V2GRequest{
		Fleet:          fleet,
		WeeklySchedule: schedule,
		TouPeriods:     tous,
	})
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}
	s.saveResult(ctx, projectID, "v2g", res)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStandaloneV2G(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req types.V2GRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid v2g request: "+err.Error(), http.StatusBadRequest)
		return
	}

	res, err := s.planner.V2G(req)
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
