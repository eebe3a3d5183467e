package server

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/pvece/pvece/pkg/log"
	"github.com/pvece/pvece/pkg/types"
)

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var project types.Project
	if err := json.NewDecoder(r.Body).Decode(&project); err != nil {
		writeJSONError(w, "invalid project body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if project.Name == "" {
		writeJSONError(w, "project name is required", http.StatusBadRequest)
		return
	}
	if project.ID == "" {
		b := make([]byte, 8)
		if _, err := rand.Read(b); err != nil {
			writeJSONError(w, "failed to generate project id", http.StatusInternalServerError)
			return
		}
		project.ID = hex.EncodeToString(b)
	}
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now

	if err := s.storage.CreateProject(ctx, project); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to create project", slog.String("projectID", project.ID), slog.Any("error", err))
		writeJSONError(w, "failed to create project", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projects, err := s.storage.ListProjects(ctx)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to list projects", slog.Any("error", err))
		writeJSONError(w, "failed to list projects", http.StatusInternalServerError)
		return
	}
	if projects == nil {
		projects = []types.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	project, err := s.storage.GetProject(ctx, r.PathValue("id"))
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := r.PathValue("id")

	existing, err := s.storage.GetProject(ctx, projectID)
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	var project types.Project
	if err := json.NewDecoder(r.Body).Decode(&project); err != nil {
		writeJSONError(w, "invalid project body: "+err.Error(), http.StatusBadRequest)
		return
	}
	project.ID = projectID
	project.CreatedAt = existing.CreatedAt
	project.UpdatedAt = time.Now().UTC()

	if err := s.storage.UpdateProject(ctx, project); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to update project", slog.String("projectID", projectID), slog.Any("error", err))
		writeJSONError(w, "failed to update project", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := r.PathValue("id")

	if err := s.storage.DeleteProject(ctx, projectID); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to delete project", slog.String("projectID", projectID), slog.Any("error", err))
		writeJSONError(w, "failed to delete project", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetPvConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cfg, err := s.storage.GetPvConfig(ctx, r.PathValue("id"))
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleSetPvConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := r.PathValue("id")

	var cfg types.PvConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeJSONError(w, "invalid pv config body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if cfg.InstalledCapacityKw.IsNegative() {
		writeJSONError(w, "pv installed capacity must be >= 0", http.StatusBadRequest)
		return
	}

	if err := s.storage.SetPvConfig(ctx, projectID, cfg); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to save pv config", slog.String("projectID", projectID), slog.Any("error", err))
		writeJSONError(w, "failed to save pv config", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleGetFleetConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cfg, err := s.storage.GetFleetConfig(ctx, r.PathValue("id"))
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleSetFleetConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := r.PathValue("id")

	var cfg types.FleetRecord
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeJSONError(w, "invalid fleet config body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := cfg.FleetConfig.Validate(); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	// Reject blobs that would only be caught (and degraded away) at
	// calculation time.
	if _, err := types.ParseWeeklySchedule(cfg.WeeklyScheduleJSON); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := types.ParseSpecialDates(cfg.SpecialDatesJSON); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.storage.SetFleetConfig(ctx, projectID, cfg); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to save fleet config", slog.String("projectID", projectID), slog.Any("error", err))
		writeJSONError(w, "failed to save fleet config", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleListTariff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	periods, err := s.storage.ListTariff(ctx, r.PathValue("id"))
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}
	if periods == nil {
		periods = []types.TariffPeriodRecord{}
	}
	writeJSON(w, http.StatusOK, periods)
}

func (s *Server) handleReplaceTariff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := r.PathValue("id")

	var periods []types.TariffPeriodRecord
	if err := json.NewDecoder(r.Body).Decode(&periods); err != nil {
		writeJSONError(w, "invalid tariff body: "+err.Error(), http.StatusBadRequest)
		return
	}
	for i, p := range periods {
		if p.Price.IsNegative() {
			writeJSONError(w, "tariff price must be >= 0", http.StatusBadRequest)
			return
		}
		if _, err := types.ParseClockRanges(p.TimeRangesJSON); err != nil {
			log.Ctx(ctx).WarnContext(ctx, "tariff period has unparseable time ranges",
				slog.String("projectID", projectID), slog.Int("index", i), slog.Any("error", err))
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if err := s.storage.ReplaceTariff(ctx, projectID, periods); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to replace tariff", slog.String("projectID", projectID), slog.Any("error", err))
		writeJSONError(w, "failed to replace tariff", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, periods)
}
