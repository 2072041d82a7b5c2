package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/predictball/predictor-league/internal/domain/league"
	"github.com/predictball/predictor-league/internal/domain/leaguescore"
)

// CurrentUserPosition tells the UI where a detached requesting-user row sits
// relative to the returned page.
type CurrentUserPosition string

const (
	CurrentUserAbovePage CurrentUserPosition = "above"
	CurrentUserBelowPage CurrentUserPosition = "below"
)

type LeagueTableRow struct {
	UserID        string
	Rank          int
	RankChange    int
	IsNewMember   bool
	GameweekScore int
	TotalScore    int
}

type TablePagination struct {
	Page         int
	PageSize     int
	TotalMembers int
	TotalPages   int
	StartRank    int
	EndRank      int
	HasNextPage  bool
	HasPrevPage  bool
}

// CurrentUserEntry is the requesting user's row when it falls outside the
// returned page. It is additive: not part of Rows and not counted in the
// pagination metadata.
type CurrentUserEntry struct {
	Row      LeagueTableRow
	Position CurrentUserPosition
}

type LeagueTable struct {
	LeagueID    string
	Gameweek    int
	Rows        []LeagueTableRow
	Pagination  TablePagination
	CurrentUser *CurrentUserEntry
}

type GetTableInput struct {
	LeagueID string
	// Gameweek 0 resolves to the latest gameweek with calculated scores.
	Gameweek         int
	Page             int
	PageSize         int
	RequestingUserID string
}

const defaultTablePageSize = 20

// LeagueTableService pages through a league's calculated ranking.
type LeagueTableService struct {
	leagueRepo league.Repository
	scoreRepo  leaguescore.Repository
}

func NewLeagueTableService(leagueRepo league.Repository, scoreRepo leaguescore.Repository) *LeagueTableService {
	return &LeagueTableService{
		leagueRepo: leagueRepo,
		scoreRepo:  scoreRepo,
	}
}

func (s *LeagueTableService) GetTable(ctx context.Context, input GetTableInput) (LeagueTable, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueTableService.GetTable")
	defer span.End()

	if input.LeagueID == "" {
		return LeagueTable{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if input.Gameweek < 0 {
		return LeagueTable{}, fmt.Errorf("%w: gameweek cannot be negative", ErrInvalidInput)
	}
	if input.Page < 1 {
		input.Page = 1
	}
	if input.PageSize < 1 {
		input.PageSize = defaultTablePageSize
	}

	_, exists, err := s.leagueRepo.GetByID(ctx, input.LeagueID)
	if err != nil {
		return LeagueTable{}, fmt.Errorf("get league by id: %w", err)
	}
	if !exists {
		return LeagueTable{}, fmt.Errorf("%w: league=%s", ErrNotFound, input.LeagueID)
	}

	gameweek := input.Gameweek
	if gameweek == 0 {
		latest, ok, err := s.scoreRepo.LatestCalculatedGameweek(ctx, input.LeagueID)
		if err != nil {
			return LeagueTable{}, fmt.Errorf("resolve latest calculated gameweek league=%s: %w", input.LeagueID, err)
		}
		if !ok {
			// nothing calculated yet: an empty table, not an error
			return LeagueTable{
				LeagueID:   input.LeagueID,
				Rows:       []LeagueTableRow{},
				Pagination: TablePagination{Page: input.Page, PageSize: input.PageSize},
			}, nil
		}
		gameweek = latest
	}

	snapshots, err := s.scoreRepo.ListSnapshotsByGameweek(ctx, input.LeagueID, gameweek)
	if err != nil {
		return LeagueTable{}, fmt.Errorf("list snapshots league=%s gameweek=%d: %w", input.LeagueID, gameweek, err)
	}
	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].Rank < snapshots[j].Rank
	})

	totalMembers := len(snapshots)
	totalPages := (totalMembers + input.PageSize - 1) / input.PageSize

	start := (input.Page - 1) * input.PageSize
	end := start + input.PageSize
	if start > totalMembers {
		start = totalMembers
	}
	if end > totalMembers {
		end = totalMembers
	}

	rows := make([]LeagueTableRow, 0, end-start)
	for _, row := range snapshots[start:end] {
		rows = append(rows, snapshotToRow(row))
	}

	table := LeagueTable{
		LeagueID: input.LeagueID,
		Gameweek: gameweek,
		Rows:     rows,
		Pagination: TablePagination{
			Page:         input.Page,
			PageSize:     input.PageSize,
			TotalMembers: totalMembers,
			TotalPages:   totalPages,
			HasNextPage:  end < totalMembers,
			HasPrevPage:  input.Page > 1 && totalMembers > 0,
		},
	}
	if len(rows) > 0 {
		table.Pagination.StartRank = rows[0].Rank
		table.Pagination.EndRank = rows[len(rows)-1].Rank
	}

	if input.RequestingUserID != "" {
		table.CurrentUser = detachedCurrentUser(snapshots, start, end, input.RequestingUserID)
	}

	return table, nil
}

// detachedCurrentUser surfaces the requesting user's row when it is off the
// returned page, tagged with which side of the page it sits on.
func detachedCurrentUser(snapshots []leaguescore.Snapshot, start, end int, userID string) *CurrentUserEntry {
	for idx, row := range snapshots {
		if row.UserID != userID {
			continue
		}
		if idx >= start && idx < end {
			return nil
		}
		position := CurrentUserBelowPage
		if idx < start {
			position = CurrentUserAbovePage
		}
		return &CurrentUserEntry{
			Row:      snapshotToRow(row),
			Position: position,
		}
	}
	return nil
}

func snapshotToRow(row leaguescore.Snapshot) LeagueTableRow {
	return LeagueTableRow{
		UserID:        row.UserID,
		Rank:          row.Rank,
		RankChange:    row.RankChange,
		IsNewMember:   row.IsNewMember,
		GameweekScore: row.GameweekScore,
		TotalScore:    row.TotalScore,
	}
}
