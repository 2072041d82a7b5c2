package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/predictball/predictor-league/internal/domain/league"
	"github.com/predictball/predictor-league/internal/domain/leaguescore"
	"github.com/predictball/predictor-league/internal/infrastructure/repository/memory"
	idgen "github.com/predictball/predictor-league/internal/platform/id"
)

func TestCreateLeague(t *testing.T) {
	ctx := context.Background()
	leagueRepo := memory.NewLeagueRepository(nil)
	svc := NewLeagueService(leagueRepo, memory.NewLeagueScoreRepository(), idgen.NewRandomGenerator())

	created, err := svc.CreateLeague(ctx, CreateLeagueInput{
		CreatorUserID:   "u1",
		Name:            "Office League",
		IsPrivate:       true,
		CurrentGameweek: 3,
	})
	if err != nil {
		t.Fatalf("create league: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("league id must be generated")
	}
	if len(created.JoinCode) != 6 {
		t.Fatalf("unexpected join code length: %q", created.JoinCode)
	}
	for _, r := range created.JoinCode {
		if !strings.ContainsRune(joinCodeAlphabet, r) {
			t.Fatalf("join code uses a character outside the alphabet: %q", created.JoinCode)
		}
	}

	members, err := leagueRepo.ListMembers(ctx, created.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 1 || members[0].UserID != "u1" {
		t.Fatalf("creator must be the first member: %+v", members)
	}
	if members[0].JoinedGameweek != 3 {
		t.Fatalf("creator join gameweek must be the current one: got=%d want=3", members[0].JoinedGameweek)
	}
}

func TestCreateLeague_Validation(t *testing.T) {
	svc := NewLeagueService(memory.NewLeagueRepository(nil), memory.NewLeagueScoreRepository(), idgen.NewRandomGenerator())

	cases := []CreateLeagueInput{
		{Name: "No Creator", CurrentGameweek: 1},
		{CreatorUserID: "u1", CurrentGameweek: 1},
		{CreatorUserID: "u1", Name: "No Gameweek"},
	}
	for _, input := range cases {
		if _, err := svc.CreateLeague(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", input, err)
		}
	}
}

func TestJoinByCode(t *testing.T) {
	ctx := context.Background()
	leagueRepo := memory.NewLeagueRepository([]league.League{
		{ID: "l1", Name: "Open League", CreatorUserID: "u1", JoinCode: "ABC234"},
	})
	svc := NewLeagueService(leagueRepo, memory.NewLeagueScoreRepository(), idgen.NewRandomGenerator())

	joined, err := svc.JoinByCode(ctx, JoinLeagueInput{UserID: "u2", JoinCode: "abc234", CurrentGameweek: 5})
	if err != nil {
		t.Fatalf("join by code: %v", err)
	}
	if joined.ID != "l1" {
		t.Fatalf("unexpected league: %s", joined.ID)
	}

	members, _ := leagueRepo.ListMembers(ctx, "l1")
	if len(members) != 1 || members[0].JoinedGameweek != 5 {
		t.Fatalf("membership must freeze the join gameweek: %+v", members)
	}

	// rejoining later must not move the frozen join gameweek
	if _, err := svc.JoinByCode(ctx, JoinLeagueInput{UserID: "u2", JoinCode: "ABC234", CurrentGameweek: 9}); err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	members, _ = leagueRepo.ListMembers(ctx, "l1")
	if len(members) != 1 || members[0].JoinedGameweek != 5 {
		t.Fatalf("rejoin must keep the original join gameweek: %+v", members)
	}
}

func TestJoinByCode_UnknownCode(t *testing.T) {
	svc := NewLeagueService(memory.NewLeagueRepository(nil), memory.NewLeagueScoreRepository(), idgen.NewRandomGenerator())

	_, err := svc.JoinByCode(context.Background(), JoinLeagueInput{UserID: "u1", JoinCode: "ZZZZZZ", CurrentGameweek: 1})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetLeague_PrivateRequiresMembership(t *testing.T) {
	ctx := context.Background()
	leagueRepo := memory.NewLeagueRepository([]league.League{
		{ID: "l1", Name: "Private League", CreatorUserID: "u1", IsPrivate: true, JoinCode: "ABC234"},
	})
	_ = leagueRepo.UpsertMembership(ctx, league.Membership{LeagueID: "l1", UserID: "u1", JoinedGameweek: 1})

	svc := NewLeagueService(leagueRepo, memory.NewLeagueScoreRepository(), idgen.NewRandomGenerator())

	if _, err := svc.GetLeague(ctx, "u1", "l1"); err != nil {
		t.Fatalf("member access: %v", err)
	}
	if _, err := svc.GetLeague(ctx, "u2", "l1"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for non-member, got %v", err)
	}
}

func TestListMyLeagues_RankMovement(t *testing.T) {
	ctx := context.Background()
	leagueRepo := memory.NewLeagueRepository([]league.League{
		{ID: "l1", Name: "League One", CreatorUserID: "u1", JoinCode: "ABC234"},
	})
	_ = leagueRepo.UpsertMembership(ctx, league.Membership{LeagueID: "l1", UserID: "u1", JoinedGameweek: 1})

	scoreRepo := memory.NewLeagueScoreRepository()
	_ = scoreRepo.ReplaceSnapshots(ctx, "l1", 4, []leaguescore.Snapshot{
		{LeagueID: "l1", UserID: "u1", Gameweek: 4, Rank: 2, PreviousRank: 5},
	})

	svc := NewLeagueService(leagueRepo, scoreRepo, idgen.NewRandomGenerator())

	items, err := svc.ListMyLeagues(ctx, "u1")
	if err != nil {
		t.Fatalf("list my leagues: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("unexpected league count: got=%d want=1", len(items))
	}
	if items[0].MyRank != 2 || items[0].RankMovement != RankMovementUp {
		t.Fatalf("unexpected standing: %+v", items[0])
	}
}

func TestResolveRankMovement(t *testing.T) {
	cases := []struct {
		current, previous int
		want              RankMovement
	}{
		{2, 5, RankMovementUp},
		{5, 2, RankMovementDown},
		{3, 3, RankMovementSame},
		{3, 0, RankMovementNew},
		{0, 0, RankMovementNew},
	}
	for _, tc := range cases {
		if got := resolveRankMovement(tc.current, tc.previous); got != tc.want {
			t.Fatalf("resolveRankMovement(%d, %d)=%s want=%s", tc.current, tc.previous, got, tc.want)
		}
	}
}
