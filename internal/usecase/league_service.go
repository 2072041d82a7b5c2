package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/predictball/predictor-league/internal/domain/league"
	"github.com/predictball/predictor-league/internal/domain/leaguescore"
	idgen "github.com/predictball/predictor-league/internal/platform/id"
)

const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
const joinCodeLength = 6
const maxJoinCodeAttempts = 10

type RankMovement string

const (
	RankMovementUp   RankMovement = "up"
	RankMovementDown RankMovement = "down"
	RankMovementSame RankMovement = "same"
	RankMovementNew  RankMovement = "new"
)

type CreateLeagueInput struct {
	CreatorUserID   string
	Name            string
	IsPrivate       bool
	CurrentGameweek int
}

type JoinLeagueInput struct {
	UserID          string
	JoinCode        string
	CurrentGameweek int
}

type LeagueWithMyStanding struct {
	League       league.League
	MyRank       int
	PreviousRank int
	RankMovement RankMovement
}

// LeagueService owns league lifecycle: creation with a collision-free join
// code, joining (which freezes the member's join gameweek), and the
// member's-eye listing with rank movement.
type LeagueService struct {
	leagueRepo league.Repository
	scoreRepo  leaguescore.Repository
	idGen      idgen.Generator
	now        func() time.Time
}

func NewLeagueService(leagueRepo league.Repository, scoreRepo leaguescore.Repository, idGen idgen.Generator) *LeagueService {
	return &LeagueService{
		leagueRepo: leagueRepo,
		scoreRepo:  scoreRepo,
		idGen:      idGen,
		now:        time.Now,
	}
}

func (s *LeagueService) CreateLeague(ctx context.Context, input CreateLeagueInput) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.CreateLeague")
	defer span.End()

	input.CreatorUserID = strings.TrimSpace(input.CreatorUserID)
	input.Name = strings.TrimSpace(input.Name)
	if input.CreatorUserID == "" {
		return league.League{}, fmt.Errorf("%w: creator user id is required", ErrInvalidInput)
	}
	if input.Name == "" {
		return league.League{}, fmt.Errorf("%w: league name is required", ErrInvalidInput)
	}
	if input.CurrentGameweek < 1 {
		return league.League{}, fmt.Errorf("%w: current gameweek must be greater than zero", ErrInvalidInput)
	}

	leagueID, err := s.idGen.NewID()
	if err != nil {
		return league.League{}, fmt.Errorf("generate league id: %w", err)
	}

	joinCode, err := s.uniqueJoinCode(ctx)
	if err != nil {
		return league.League{}, err
	}

	now := s.now().UTC()
	item := league.League{
		ID:            leagueID,
		Name:          input.Name,
		CreatorUserID: input.CreatorUserID,
		IsPrivate:     input.IsPrivate,
		JoinCode:      joinCode,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := item.Validate(); err != nil {
		return league.League{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.leagueRepo.Create(ctx, item); err != nil {
		return league.League{}, fmt.Errorf("create league: %w", err)
	}

	// the creator is a member from the current gameweek onward
	if err := s.leagueRepo.UpsertMembership(ctx, league.Membership{
		LeagueID:       item.ID,
		UserID:         input.CreatorUserID,
		JoinedGameweek: input.CurrentGameweek,
		JoinedAt:       now,
	}); err != nil {
		return league.League{}, fmt.Errorf("upsert creator membership: %w", err)
	}

	return item, nil
}

func (s *LeagueService) JoinByCode(ctx context.Context, input JoinLeagueInput) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.JoinByCode")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.JoinCode = strings.ToUpper(strings.TrimSpace(input.JoinCode))
	if input.UserID == "" {
		return league.League{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.JoinCode == "" {
		return league.League{}, fmt.Errorf("%w: join code is required", ErrInvalidInput)
	}
	if input.CurrentGameweek < 1 {
		return league.League{}, fmt.Errorf("%w: current gameweek must be greater than zero", ErrInvalidInput)
	}

	item, exists, err := s.leagueRepo.GetByJoinCode(ctx, input.JoinCode)
	if err != nil {
		return league.League{}, fmt.Errorf("get league by join code: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: join code not found", ErrNotFound)
	}

	alreadyMember, err := s.leagueRepo.IsMember(ctx, item.ID, input.UserID)
	if err != nil {
		return league.League{}, fmt.Errorf("check league member: %w", err)
	}
	if alreadyMember {
		// joining twice keeps the original join gameweek
		return item, nil
	}

	if err := s.leagueRepo.UpsertMembership(ctx, league.Membership{
		LeagueID:       item.ID,
		UserID:         input.UserID,
		JoinedGameweek: input.CurrentGameweek,
		JoinedAt:       s.now().UTC(),
	}); err != nil {
		return league.League{}, fmt.Errorf("upsert membership: %w", err)
	}

	return item, nil
}

func (s *LeagueService) GetLeague(ctx context.Context, userID, leagueID string) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.GetLeague")
	defer span.End()

	userID = strings.TrimSpace(userID)
	leagueID = strings.TrimSpace(leagueID)
	if userID == "" {
		return league.League{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if leagueID == "" {
		return league.League{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	item, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league by id: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	isMember, err := s.leagueRepo.IsMember(ctx, leagueID, userID)
	if err != nil {
		return league.League{}, fmt.Errorf("check league member: %w", err)
	}
	if !isMember && item.IsPrivate {
		return league.League{}, fmt.Errorf("%w: you are not a member of this league", ErrUnauthorized)
	}

	return item, nil
}

func (s *LeagueService) ListMyLeagues(ctx context.Context, userID string) ([]LeagueWithMyStanding, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.ListMyLeagues")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	leagues, err := s.leagueRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list leagues by user: %w", err)
	}

	items := make([]LeagueWithMyStanding, 0, len(leagues))
	for _, item := range leagues {
		entry := LeagueWithMyStanding{
			League:       item,
			RankMovement: RankMovementNew,
		}

		latest, ok, err := s.scoreRepo.LatestCalculatedGameweek(ctx, item.ID)
		if err != nil {
			return nil, fmt.Errorf("resolve latest gameweek league=%s: %w", item.ID, err)
		}
		if ok {
			snapshot, exists, err := s.scoreRepo.GetSnapshot(ctx, item.ID, latest, userID)
			if err != nil {
				return nil, fmt.Errorf("get snapshot league=%s gameweek=%d: %w", item.ID, latest, err)
			}
			if exists {
				entry.MyRank = snapshot.Rank
				entry.PreviousRank = snapshot.PreviousRank
				entry.RankMovement = resolveRankMovement(snapshot.Rank, snapshot.PreviousRank)
			}
		}

		items = append(items, entry)
	}

	return items, nil
}

// uniqueJoinCode draws random codes until one is collision-free, bounded to
// a handful of attempts before giving up.
func (s *LeagueService) uniqueJoinCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxJoinCodeAttempts; attempt++ {
		code, err := generateJoinCode(joinCodeLength)
		if err != nil {
			return "", fmt.Errorf("generate join code: %w", err)
		}

		_, exists, err := s.leagueRepo.GetByJoinCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check join code collision: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: could not find a free join code after %d attempts", ErrDependencyUnavailable, maxJoinCodeAttempts)
}

func generateJoinCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes for join code: %w", err)
	}

	out := make([]byte, length)
	for i, b := range buf {
		out[i] = joinCodeAlphabet[int(b)%len(joinCodeAlphabet)]
	}
	return string(out), nil
}

func resolveRankMovement(currentRank, previousRank int) RankMovement {
	if currentRank <= 0 {
		return RankMovementNew
	}
	if previousRank <= 0 {
		return RankMovementNew
	}
	if currentRank < previousRank {
		return RankMovementUp
	}
	if currentRank > previousRank {
		return RankMovementDown
	}
	return RankMovementSame
}
