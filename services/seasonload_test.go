package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"football-dwh/models"
	"football-dwh/providers"
)

// fakeFD ist ein konfigurierbarer MatchDataProvider für Tests.
type fakeFD struct {
	competition *providers.CompetitionMeta
	teams       []providers.TeamEntry
	matches     []providers.MatchEntry
	between     []providers.MatchEntry
	details     map[int64]*providers.MatchDetail
}

func (f *fakeFD) Competition(_ context.Context, _ string) (*providers.CompetitionMeta, error) {
	return f.competition, nil
}

func (f *fakeFD) Teams(_ context.Context, _ string, _ int) ([]providers.TeamEntry, error) {
	return f.teams, nil
}

func (f *fakeFD) Matches(_ context.Context, _ string, _ int) ([]providers.MatchEntry, error) {
	return f.matches, nil
}

func (f *fakeFD) MatchesBetween(_ context.Context, _, _, _ string) ([]providers.MatchEntry, error) {
	return f.between, nil
}

func (f *fakeFD) MatchDetail(_ context.Context, id int64) (*providers.MatchDetail, error) {
	return f.details[id], nil
}

func newTestSeasonLoad(t *testing.T, fd *fakeFD, tm *fakeTM) (*SeasonLoadService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	log := zap.NewNop()
	matcher := NewMatcher(tm, log)
	rec := NewReconciler(db, tm, matcher, log)
	facts := NewFactService(db, log)
	return &SeasonLoadService{
		DB:         db,
		FD:         fd,
		TM:         tm,
		Reconciler: rec,
		Seasons:    NewSeasonService(db, log),
		Facts:      facts,
		Perf:       NewPerformanceService(db, rec, log),
		Logger:     log,
	}, db
}

func TestSeasonLoadRun(t *testing.T) {
	home, away := 2, 0
	fd := &fakeFD{
		competition: &providers.CompetitionMeta{Code: "PL", Name: "Premier League"},
		teams: []providers.TeamEntry{
			{ID: 57, Name: "Arsenal FC", ShortName: "Arsenal", TLA: "ARS"},
			{ID: 61, Name: "Chelsea FC", ShortName: "Chelsea", TLA: "CHE"},
		},
		matches: []providers.MatchEntry{
			{
				ID:      1001,
				UTCDate: time.Date(2024, 8, 17, 14, 0, 0, 0, time.UTC),
				Status:  "FINISHED",
				HomeTeam: providers.TeamRef{ID: 57, Name: "Arsenal FC"},
				AwayTeam: providers.TeamRef{ID: 61, Name: "Chelsea FC"},
				HomeScore: &home,
				AwayScore: &away,
			},
			{
				ID:       1002,
				UTCDate:  time.Date(2025, 5, 25, 15, 0, 0, 0, time.UTC),
				Status:   "SCHEDULED",
				HomeTeam: providers.TeamRef{ID: 61, Name: "Chelsea FC"},
				AwayTeam: providers.TeamRef{ID: 57, Name: "Arsenal FC"},
			},
		},
		details: map[int64]*providers.MatchDetail{
			1001: {
				MatchEntry: providers.MatchEntry{ID: 1001, Status: "FINISHED"},
				Home: providers.TeamSheet{
					TeamID: 57,
					Lineup: []providers.PersonRef{{ID: 1, Name: "Heimspieler"}},
				},
				Away: providers.TeamSheet{
					TeamID: 61,
					Lineup: []providers.PersonRef{{ID: 2, Name: "Gastspieler"}},
				},
				Goals: []providers.GoalEvent{
					{Minute: 12, TeamID: 57, ScorerID: 1},
					{Minute: 55, TeamID: 57, ScorerID: 1},
				},
			},
		},
	}
	tm := &fakeTM{
		clubs: map[string][]providers.ClubSearchResult{
			"Arsenal": {{ID: 11, Name: "FC Arsenal"}},
			"Chelsea": {{ID: 631, Name: "FC Chelsea"}},
		},
		squads: map[int64][]providers.SquadPlayer{
			11:  {{ID: 433177, Name: "Bukayo Saka"}},
			631: {{ID: 503749, Name: "Cole Palmer"}},
		},
	}
	svc, db := newTestSeasonLoad(t, fd, tm)

	require.NoError(t, svc.Run(context.Background(), "PL", 2024))

	var season models.Season
	require.NoError(t, db.Where("name = ?", "2024/2025").First(&season).Error)

	var teamCount, playerCount, matchCount, perfCount int64
	db.Model(&models.Team{}).Count(&teamCount)
	db.Model(&models.Player{}).Count(&playerCount)
	db.Model(&models.Match{}).Count(&matchCount)
	db.Model(&models.PlayerMatchPerformance{}).Count(&perfCount)
	assert.Equal(t, int64(2), teamCount)
	// Zwei Kaderspieler plus die beiden Aufstellungsspieler des Spiels.
	assert.Equal(t, int64(4), playerCount)
	assert.Equal(t, int64(2), matchCount, "auch das geplante spiel wird vorgemerkt")
	assert.Equal(t, int64(2), perfCount)

	var scheduled models.Match
	require.NoError(t, db.Where("fd_match_id = ?", 1002).First(&scheduled).Error)
	assert.Equal(t, "SCHEDULED", scheduled.Status)

	// Zweiter Durchlauf: keine Duplikate, keine neuen Leistungen.
	require.NoError(t, svc.Run(context.Background(), "PL", 2024))
	db.Model(&models.Match{}).Count(&matchCount)
	db.Model(&models.PlayerMatchPerformance{}).Count(&perfCount)
	assert.Equal(t, int64(2), matchCount)
	assert.Equal(t, int64(2), perfCount)
}

func TestSeasonLoadAbortsWithoutCompetition(t *testing.T) {
	svc, _ := newTestSeasonLoad(t, &fakeFD{}, &fakeTM{})
	err := svc.Run(context.Background(), "XX", 2024)
	require.Error(t, err)
}
