package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"football-dwh/models"
	"football-dwh/providers"
)

func TestLatestMarketValue(t *testing.T) {
	entries := []providers.MarketValueEntry{
		{Date: "2023-12-01", MarketValue: 1},
		{Date: "2024-06-01", MarketValue: 3},
		{Date: "", MarketValue: 9},
		{Date: "2024-01-15", MarketValue: 2},
	}
	latest := latestMarketValue(entries)
	require.NotNil(t, latest)
	assert.Equal(t, "2024-06-01", latest.Date)

	assert.Nil(t, latestMarketValue(nil))
	assert.Nil(t, latestMarketValue([]providers.MarketValueEntry{{Date: ""}}))
}

func TestLatestTransfer(t *testing.T) {
	entries := []providers.TransferEntry{
		{Date: "2022-07-01"},
		{Date: "2024-07-01"},
	}
	latest := latestTransfer(entries)
	require.NotNil(t, latest)
	assert.Equal(t, "2024-07-01", latest.Date)
}

func TestDailyRunRefreshesPlayersAndClubs(t *testing.T) {
	currentSeason := CurrentTMName(time.Now())

	tm := &fakeTM{
		clubProfiles: map[int64]*providers.ClubProfile{
			11: {ID: 11, Name: "FC Arsenal", CurrentMarketValue: 1_300_000_000, CurrentTransferRecord: 120_000_000},
		},
		marketValues: map[int64][]providers.MarketValueEntry{
			433177: {
				{Date: "2023-12-01", MarketValue: 110_000_000},
				{Date: "2024-06-01", MarketValue: 140_000_000},
			},
		},
		transfers: map[int64][]providers.TransferEntry{
			433177: {},
		},
		stats: map[int64][]providers.StatLine{
			433177: {
				{SeasonID: currentSeason, CompetitionID: "GB1", CompetitionName: "Premier League", Appearances: 3, Goals: 2},
				{SeasonID: "19/20", CompetitionID: "GB1", CompetitionName: "Premier League", Appearances: 26, Goals: 1},
			},
		},
	}
	db := newTestDB(t)
	log := zap.NewNop()
	matcher := NewMatcher(tm, log)
	rec := NewReconciler(db, tm, matcher, log)
	facts := NewFactService(db, log)
	seasons := NewSeasonService(db, log)
	playerData := &PlayerDataService{
		DB: db, TM: tm, Reconciler: rec, Seasons: seasons, Facts: facts, Matcher: matcher, Logger: log,
	}
	daily := &DailyService{
		DB: db, FD: &fakeFD{}, TM: tm, Facts: facts, Seasons: seasons,
		PlayerData: playerData,
		SeasonLoad: &SeasonLoadService{
			DB: db, FD: &fakeFD{}, TM: tm, Reconciler: rec, Seasons: seasons,
			Facts: facts, Perf: NewPerformanceService(db, rec, log), Logger: log,
		},
		Competition: "PL",
		Logger:      log,
	}

	tmTeamID := int64(11)
	team := models.Team{TMID: &tmTeamID, Name: "FC Arsenal", CurrentMarketValue: 1_200_000_000}
	require.NoError(t, db.Create(&team).Error)
	tmPlayerID := int64(433177)
	player := models.Player{TMID: &tmPlayerID, Name: "Bukayo Saka", CurrentTeamID: &team.ID}
	require.NoError(t, db.Create(&player).Error)

	require.NoError(t, daily.Run(context.Background()))

	var fromDB models.Team
	require.NoError(t, db.First(&fromDB, team.ID).Error)
	assert.Equal(t, int64(1_300_000_000), fromDB.CurrentMarketValue)
	assert.Equal(t, int64(120_000_000), fromDB.CurrentTransferRecord)

	// Nur der jüngste Marktwertpunkt wird geschrieben.
	var values []models.MarketValue
	require.NoError(t, db.Find(&values).Error)
	require.Len(t, values, 1)
	assert.Equal(t, "2024-06-01", values[0].DateRecorded)

	// Nur die Statistikzeile der laufenden Saison.
	var stats []models.PlayerSeasonStat
	require.NoError(t, db.Find(&stats).Error)
	require.Len(t, stats, 1)
	assert.Equal(t, 3, stats[0].Appearances)

	// Wiederholter Lauf ohne neue Daten ändert nichts.
	require.NoError(t, daily.Run(context.Background()))
	db.Find(&values)
	db.Find(&stats)
	assert.Len(t, values, 1)
	assert.Len(t, stats, 1)
}
