package httpapi

import (
	"net/http"

	"github.com/predictball/predictor-league/internal/domain/user"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, users user.Repository) {
	mux.Handle("POST /v1/leagues", RequireUser(users, http.HandlerFunc(handler.CreateLeague)))
	mux.Handle("POST /v1/leagues/join", RequireUser(users, http.HandlerFunc(handler.JoinLeague)))
	mux.Handle("GET /v1/leagues/me", RequireUser(users, http.HandlerFunc(handler.ListMyLeagues)))
	mux.Handle("GET /v1/leagues/{leagueID}", RequireUser(users, http.HandlerFunc(handler.GetLeague)))
	mux.Handle("GET /v1/leagues/{leagueID}/table", RequireUser(users, http.HandlerFunc(handler.GetLeagueTable)))

	mux.Handle("PUT /v1/predictions/{gameweek}", RequireUser(users, http.HandlerFunc(handler.SubmitPredictions)))
	mux.Handle("GET /v1/predictions/{gameweek}", RequireUser(users, http.HandlerFunc(handler.GetMyPredictions)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/gameweek-run", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunGameweek)))
	mux.Handle("POST /v1/internal/jobs/league-backfill", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.BackfillLeague)))
}
