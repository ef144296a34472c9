package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerChampionshipRoutes(mux *http.ServeMux, handler *Handler, adminToken string) {
	mux.HandleFunc("GET /v1/matches", handler.ListMatches)
	mux.HandleFunc("POST /v1/matches", handler.RecordMatch)
	mux.HandleFunc("DELETE /v1/matches/last", handler.UndoLastMatch)
	mux.HandleFunc("PUT /v1/matches/{position}", handler.EditMatch)
	mux.HandleFunc("DELETE /v1/matches/{position}", handler.DeleteMatch)
	mux.HandleFunc("GET /v1/rankings", handler.ListRankings)
	mux.HandleFunc("GET /v1/standings", handler.ListStandings)
	mux.HandleFunc("GET /v1/teams/{teamID}", handler.GetTeam)
	mux.Handle("PUT /v1/teams/{teamID}/name", RequireAdminToken(adminToken, http.HandlerFunc(handler.RenameTeam)))
}

func registerPredictionRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/fixtures/remaining", handler.ListRemainingFixtures)
	mux.HandleFunc("POST /v1/predictions/match", handler.PredictMatch)
	mux.HandleFunc("POST /v1/predictions/season", handler.PredictSeason)
}

func registerBackupRoutes(mux *http.ServeMux, handler *Handler, adminToken string) {
	mux.HandleFunc("GET /v1/backups", handler.ListBackups)
	mux.HandleFunc("POST /v1/backups", handler.CreateBackup)
	mux.Handle("POST /v1/backups/{name}/restore", RequireAdminToken(adminToken, http.HandlerFunc(handler.RestoreBackup)))
	mux.Handle("POST /v1/championship/reset", RequireAdminToken(adminToken, http.HandlerFunc(handler.ResetChampionship)))
}
