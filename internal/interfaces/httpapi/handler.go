package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/elo-championship/internal/platform/logging"
	"github.com/riskibarqy/elo-championship/internal/usecase"
)

type Handler struct {
	championshipService *usecase.ChampionshipService
	predictionService   *usecase.PredictionService
	backupService       *usecase.BackupService
	logger              *logging.Logger
	validator           *validator.Validate
}

func NewHandler(
	championshipService *usecase.ChampionshipService,
	predictionService *usecase.PredictionService,
	backupService *usecase.BackupService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		championshipService: championshipService,
		predictionService:   predictionService,
		backupService:       backupService,
		logger:              logger.Named("http"),
		validator:           validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

const maxRequestBody = 1 << 20

// decodeRequest reads a JSON body into dst and validates it. An empty body is
// accepted when allowEmpty is set.
func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, dst any, allowEmpty bool) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		if !allowEmpty {
			return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
		}
		return h.validateRequest(ctx, dst)
	}

	decoder := sonic.ConfigDefault.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, dst)
}

func pathPosition(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.PathValue("position"))
	position, err := strconv.Atoi(raw)
	if err != nil || position < 1 {
		return 0, fmt.Errorf("%w: position must be a positive integer, got %q", usecase.ErrInvalidInput, raw)
	}
	return position, nil
}

func queryLimit(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("%w: limit must be a non-negative integer, got %q", usecase.ErrInvalidInput, raw)
	}
	return limit, nil
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": h.championshipService.Version(),
	})
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	limit, err := queryLimit(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	entries := h.championshipService.History(ctx, limit)
	items := make([]historyEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, historyEntryToDTO(entry))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) RecordMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordMatch")
	defer span.End()

	var req matchRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	entry, err := h.championshipService.RecordMatch(ctx, req.toInput())
	if err != nil {
		h.logger.WarnContext(ctx, "record match failed", "home_team", req.HomeTeam, "away_team", req.AwayTeam, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, historyEntryToDTO(entry))
}

func (h *Handler) EditMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EditMatch")
	defer span.End()

	position, err := pathPosition(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req matchRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	entry, err := h.championshipService.EditMatch(ctx, position, req.toInput())
	if err != nil {
		h.logger.WarnContext(ctx, "edit match failed", "position", position, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, historyEntryToDTO(entry))
}

func (h *Handler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteMatch")
	defer span.End()

	position, err := pathPosition(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	removed, err := h.championshipService.DeleteMatch(ctx, position)
	if err != nil {
		h.logger.WarnContext(ctx, "delete match failed", "position", position, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(removed))
}

func (h *Handler) UndoLastMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UndoLastMatch")
	defer span.End()

	removed, err := h.championshipService.UndoLastMatch(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(removed))
}

func (h *Handler) ListRankings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRankings")
	defer span.End()

	rankings := h.championshipService.Rankings(ctx)
	items := make([]rankingDTO, 0, len(rankings))
	for _, item := range rankings {
		items = append(items, rankingToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListStandings")
	defer span.End()

	standings := h.championshipService.Standings(ctx)
	items := make([]standingDTO, 0, len(standings))
	for _, item := range standings {
		items = append(items, standingToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeam", attribute.String("team.id", r.PathValue("teamID")))
	defer span.End()

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	detail, err := h.championshipService.Team(ctx, teamID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamDetailToDTO(detail))
}

func (h *Handler) RenameTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RenameTeam", attribute.String("team.id", r.PathValue("teamID")))
	defer span.End()

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	var req renameTeamRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	detail, err := h.championshipService.RenameTeam(ctx, teamID, req.Name)
	if err != nil {
		h.logger.WarnContext(ctx, "rename team failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamDetailToDTO(detail))
}

func (h *Handler) ListRemainingFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRemainingFixtures")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, remainingFixturesToDTO(h.predictionService.RemainingFixtures(ctx)))
}

func (h *Handler) PredictMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PredictMatch")
	defer span.End()

	var req predictMatchRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.predictionService.PredictMatch(ctx, usecase.PredictMatchInput{
		HomeTeam: req.HomeTeam,
		AwayTeam: req.AwayTeam,
		Neutral:  req.Neutral,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchPredictionToDTO(result))
}

func (h *Handler) PredictSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PredictSeason")
	defer span.End()

	var req predictSeasonRequest
	if err := h.decodeRequest(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	forecast, err := h.predictionService.PredictSeason(ctx, usecase.PredictSeasonInput{
		Trials: req.Trials,
		Seed:   req.Seed,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "season prediction failed", "trials", req.Trials, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasonForecastToDTO(forecast))
}

func (h *Handler) ListBackups(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListBackups")
	defer span.End()

	backups, err := h.backupService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list backups failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]backupDTO, 0, len(backups))
	for _, item := range backups {
		items = append(items, backupToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateBackup")
	defer span.End()

	created, err := h.backupService.Create(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, backupToDTO(created))
}

func (h *Handler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RestoreBackup", attribute.String("backup.name", r.PathValue("name")))
	defer span.End()

	name := strings.TrimSpace(r.PathValue("name"))
	result, err := h.backupService.Restore(ctx, name)
	if err != nil {
		h.logger.WarnContext(ctx, "restore backup failed", "backup", name, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, restoreResultDTO{
		Restored:     result.Restored,
		Matches:      result.Matches,
		SafetyBackup: backupToDTO(result.SafetyBackup),
	})
}

func (h *Handler) ResetChampionship(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResetChampionship")
	defer span.End()

	safety, err := h.backupService.Reset(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "reset championship failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"reset":         true,
		"safety_backup": backupToDTO(safety),
	})
}
