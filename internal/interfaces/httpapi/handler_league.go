package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/predictball/predictor-league/internal/domain/league"
	"github.com/predictball/predictor-league/internal/usecase"
)

func (h *Handler) CreateLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateLeague")
	defer span.End()

	currentUser, ok := currentUserFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: user is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createLeagueRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.leagueService.CreateLeague(ctx, usecase.CreateLeagueInput{
		CreatorUserID:   currentUser.ID,
		Name:            req.Name,
		IsPrivate:       req.IsPrivate,
		CurrentGameweek: req.CurrentGameweek,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create league failed", "user_id", currentUser.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, leagueToDTO(created))
}

func (h *Handler) JoinLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinLeague")
	defer span.End()

	currentUser, ok := currentUserFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: user is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req joinLeagueRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	joined, err := h.leagueService.JoinByCode(ctx, usecase.JoinLeagueInput{
		UserID:          currentUser.ID,
		JoinCode:        req.JoinCode,
		CurrentGameweek: req.CurrentGameweek,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "join league failed", "user_id", currentUser.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(joined))
}

func (h *Handler) ListMyLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyLeagues")
	defer span.End()

	currentUser, ok := currentUserFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: user is missing from request context", usecase.ErrUnauthorized))
		return
	}

	standings, err := h.leagueService.ListMyLeagues(ctx, currentUser.ID)
	if err != nil {
		h.logger.WarnContext(ctx, "list my leagues failed", "user_id", currentUser.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]myLeagueDTO, 0, len(standings))
	for _, standing := range standings {
		items = append(items, myLeagueToDTO(standing))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeague")
	defer span.End()

	currentUser, ok := currentUserFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: user is missing from request context", usecase.ErrUnauthorized))
		return
	}
	leagueID := strings.TrimSpace(r.PathValue("leagueID"))

	found, err := h.leagueService.GetLeague(ctx, currentUser.ID, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get league failed", "user_id", currentUser.ID, "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(found))
}

func (h *Handler) GetLeagueTable(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeagueTable")
	defer span.End()

	currentUser, ok := currentUserFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: user is missing from request context", usecase.ErrUnauthorized))
		return
	}
	leagueID := strings.TrimSpace(r.PathValue("leagueID"))

	input := usecase.GetTableInput{
		LeagueID:         leagueID,
		RequestingUserID: currentUser.ID,
	}
	var err error
	if input.Gameweek, err = optionalPositiveIntQuery(r, "gameweek"); err != nil {
		writeError(ctx, w, err)
		return
	}
	if input.Page, err = optionalPositiveIntQuery(r, "page"); err != nil {
		writeError(ctx, w, err)
		return
	}
	if input.PageSize, err = optionalPositiveIntQuery(r, "pageSize"); err != nil {
		writeError(ctx, w, err)
		return
	}

	table, err := h.tableService.GetTable(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "get league table failed", "user_id", currentUser.ID, "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueTableToDTO(table))
}

// optionalPositiveIntQuery reads an int query parameter, returning zero when
// the parameter is absent.
func optionalPositiveIntQuery(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}

type createLeagueRequest struct {
	Name            string `json:"name" validate:"required,max=100"`
	IsPrivate       bool   `json:"isPrivate"`
	CurrentGameweek int    `json:"currentGameweek" validate:"required,gte=1"`
}

type joinLeagueRequest struct {
	JoinCode        string `json:"joinCode" validate:"required,len=6"`
	CurrentGameweek int    `json:"currentGameweek" validate:"required,gte=1"`
}

type leagueDTO struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CreatorUserID string    `json:"creatorUserId"`
	IsPrivate     bool      `json:"isPrivate"`
	JoinCode      string    `json:"joinCode"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type myLeagueDTO struct {
	League       leagueDTO `json:"league"`
	MyRank       int       `json:"myRank"`
	PreviousRank int       `json:"previousRank"`
	RankMovement string    `json:"rankMovement"`
}

type leagueTableRowDTO struct {
	UserID        string `json:"userId"`
	Rank          int    `json:"rank"`
	RankChange    int    `json:"rankChange"`
	IsNewMember   bool   `json:"isNewMember"`
	GameweekScore int    `json:"gameweekScore"`
	TotalScore    int    `json:"totalScore"`
}

type tablePaginationDTO struct {
	Page         int  `json:"page"`
	PageSize     int  `json:"pageSize"`
	TotalMembers int  `json:"totalMembers"`
	TotalPages   int  `json:"totalPages"`
	StartRank    int  `json:"startRank"`
	EndRank      int  `json:"endRank"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

type currentUserEntryDTO struct {
	Row      leagueTableRowDTO `json:"row"`
	Position string            `json:"position"`
}

type leagueTableDTO struct {
	LeagueID    string               `json:"leagueId"`
	Gameweek    int                  `json:"gameweek"`
	Rows        []leagueTableRowDTO  `json:"rows"`
	Pagination  tablePaginationDTO   `json:"pagination"`
	CurrentUser *currentUserEntryDTO `json:"currentUser,omitempty"`
}

func leagueToDTO(l league.League) leagueDTO {
	return leagueDTO{
		ID:            l.ID,
		Name:          l.Name,
		CreatorUserID: l.CreatorUserID,
		IsPrivate:     l.IsPrivate,
		JoinCode:      l.JoinCode,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

func myLeagueToDTO(standing usecase.LeagueWithMyStanding) myLeagueDTO {
	return myLeagueDTO{
		League:       leagueToDTO(standing.League),
		MyRank:       standing.MyRank,
		PreviousRank: standing.PreviousRank,
		RankMovement: string(standing.RankMovement),
	}
}

func leagueTableRowToDTO(row usecase.LeagueTableRow) leagueTableRowDTO {
	return leagueTableRowDTO{
		UserID:        row.UserID,
		Rank:          row.Rank,
		RankChange:    row.RankChange,
		IsNewMember:   row.IsNewMember,
		GameweekScore: row.GameweekScore,
		TotalScore:    row.TotalScore,
	}
}

func leagueTableToDTO(table usecase.LeagueTable) leagueTableDTO {
	rows := make([]leagueTableRowDTO, 0, len(table.Rows))
	for _, row := range table.Rows {
		rows = append(rows, leagueTableRowToDTO(row))
	}

	dto := leagueTableDTO{
		LeagueID: table.LeagueID,
		Gameweek: table.Gameweek,
		Rows:     rows,
		Pagination: tablePaginationDTO{
			Page:         table.Pagination.Page,
			PageSize:     table.Pagination.PageSize,
			TotalMembers: table.Pagination.TotalMembers,
			TotalPages:   table.Pagination.TotalPages,
			StartRank:    table.Pagination.StartRank,
			EndRank:      table.Pagination.EndRank,
			HasNextPage:  table.Pagination.HasNextPage,
			HasPrevPage:  table.Pagination.HasPrevPage,
		},
	}
	if table.CurrentUser != nil {
		dto.CurrentUser = &currentUserEntryDTO{
			Row:      leagueTableRowToDTO(table.CurrentUser.Row),
			Position: string(table.CurrentUser.Position),
		}
	}
	return dto
}
