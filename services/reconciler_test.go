package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"football-dwh/models"
	"football-dwh/providers"
)

// newTestDB öffnet eine In-Memory-SQLite mit allen Warehouse-Tabellen.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Season{},
		&models.Competition{},
		&models.Team{},
		&models.Player{},
		&models.Match{},
		&models.MarketValue{},
		&models.Transfer{},
		&models.PlayerSeasonStat{},
		&models.PlayerMatchPerformance{},
	))
	return db
}

// fakeTM ist ein konfigurierbarer ProfileProvider für Tests.
type fakeTM struct {
	clubs        map[string][]providers.ClubSearchResult
	players      map[string][]providers.PlayerSearchResult
	competitions map[string][]providers.CompetitionSearchResult
	clubProfiles map[int64]*providers.ClubProfile
	profiles     map[int64]*providers.PlayerProfile
	squads       map[int64][]providers.SquadPlayer
	marketValues map[int64][]providers.MarketValueEntry
	transfers    map[int64][]providers.TransferEntry
	stats        map[int64][]providers.StatLine
}

func (f *fakeTM) SearchClubs(_ context.Context, name string) ([]providers.ClubSearchResult, error) {
	return f.clubs[name], nil
}

func (f *fakeTM) SearchPlayers(_ context.Context, name string) ([]providers.PlayerSearchResult, error) {
	return f.players[name], nil
}

func (f *fakeTM) SearchCompetitions(_ context.Context, name string) ([]providers.CompetitionSearchResult, error) {
	return f.competitions[name], nil
}

func (f *fakeTM) ClubProfile(_ context.Context, id int64) (*providers.ClubProfile, error) {
	return f.clubProfiles[id], nil
}

func (f *fakeTM) PlayerProfile(_ context.Context, id int64) (*providers.PlayerProfile, error) {
	return f.profiles[id], nil
}

func (f *fakeTM) ClubPlayers(_ context.Context, id int64, _ int) ([]providers.SquadPlayer, error) {
	return f.squads[id], nil
}

func (f *fakeTM) MarketValueHistory(_ context.Context, id int64) ([]providers.MarketValueEntry, error) {
	return f.marketValues[id], nil
}

func (f *fakeTM) Transfers(_ context.Context, id int64) ([]providers.TransferEntry, error) {
	return f.transfers[id], nil
}

func (f *fakeTM) SeasonStats(_ context.Context, id int64) ([]providers.StatLine, error) {
	return f.stats[id], nil
}

func newTestReconciler(t *testing.T, tm *fakeTM) (*Reconciler, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	log := zap.NewNop()
	matcher := NewMatcher(tm, log)
	return NewReconciler(db, tm, matcher, log), db
}

func TestResolveOrCreateTeamFDCreatesWithCrossID(t *testing.T) {
	tm := &fakeTM{
		clubs: map[string][]providers.ClubSearchResult{
			"Arsenal": {{ID: 11, Name: "FC Arsenal"}},
		},
		clubProfiles: map[int64]*providers.ClubProfile{
			11: {ID: 11, Name: "FC Arsenal", FoundedOn: "1886-10-01", StadiumName: "Emirates Stadium", CurrentMarketValue: 1_200_000_000},
		},
	}
	rec, db := newTestReconciler(t, tm)

	team, err := rec.ResolveOrCreateTeamFD(context.Background(), providers.TeamEntry{
		ID: 57, Name: "Arsenal FC", ShortName: "Arsenal", TLA: "ARS",
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, team.FDID)
	require.NotNil(t, team.TMID)
	assert.Equal(t, int64(57), *team.FDID)
	assert.Equal(t, int64(11), *team.TMID)
	assert.Equal(t, "Emirates Stadium", team.Stadium)
	assert.Equal(t, int64(1_200_000_000), team.CurrentMarketValue)

	var count int64
	db.Model(&models.Team{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestResolveOrCreateTeamFDIsIdempotent(t *testing.T) {
	tm := &fakeTM{}
	rec, db := newTestReconciler(t, tm)

	entry := providers.TeamEntry{ID: 57, Name: "Arsenal FC", ShortName: "Arsenal"}
	first, err := rec.ResolveOrCreateTeamFD(context.Background(), entry, nil)
	require.NoError(t, err)
	second, err := rec.ResolveOrCreateTeamFD(context.Background(), entry, nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	db.Model(&models.Team{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestResolveOrCreateTeamFDMergesOntoTMRow(t *testing.T) {
	tm := &fakeTM{
		clubs: map[string][]providers.ClubSearchResult{
			"Arsenal": {{ID: 11, Name: "FC Arsenal"}},
		},
	}
	rec, db := newTestReconciler(t, tm)

	// Vorab eine reine TM-Zeile, wie sie ein Transfer-Gegenverein anlegt.
	tmID := int64(11)
	require.NoError(t, db.Create(&models.Team{TMID: &tmID, Name: "FC Arsenal"}).Error)

	team, err := rec.ResolveOrCreateTeamFD(context.Background(), providers.TeamEntry{
		ID: 57, Name: "Arsenal FC", ShortName: "Arsenal", TLA: "ARS",
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, team.FDID)
	assert.Equal(t, int64(57), *team.FDID)
	assert.Equal(t, "ARS", team.TLA)

	var count int64
	db.Model(&models.Team{}).Count(&count)
	assert.Equal(t, int64(1), count, "merge darf keine zweite zeile anlegen")
}

func TestResolveOrCreateTeamTMUnknownClub(t *testing.T) {
	rec, _ := newTestReconciler(t, &fakeTM{})

	team, err := rec.ResolveOrCreateTeamTM(context.Background(), providers.ClubRef{ID: 0, Name: "Vereinslos"})
	require.NoError(t, err)
	assert.Nil(t, team, "id 0 steht für vereinslos und erzeugt keine zeile")
}

func TestResolveOrCreatePlayerTMDenylist(t *testing.T) {
	rec, db := newTestReconciler(t, &fakeTM{})

	player, err := rec.ResolveOrCreatePlayerTM(context.Background(), 340950, "Gesperrter Spieler")
	require.NoError(t, err)
	assert.Nil(t, player)

	var count int64
	db.Model(&models.Player{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestResolveOrCreatePlayerTMEnrichesFromProfileAndSearch(t *testing.T) {
	age := 26
	tm := &fakeTM{
		players: map[string][]providers.PlayerSearchResult{
			"Bukayo Saka": {{ID: 433177, Name: "Bukayo Saka", Position: "Rechtsaußen", Age: &age,
				Nationalities: []string{"England"}, Club: providers.ClubRef{ID: 11, Name: "FC Arsenal"}}},
		},
		profiles: map[int64]*providers.PlayerProfile{
			433177: {ID: 433177, Name: "Bukayo Saka", ShirtNumber: "7", PositionMain: "Rechtsaußen", DateOfBirth: "2001-09-05", Age: &age},
		},
	}
	rec, db := newTestReconciler(t, tm)

	player, err := rec.ResolveOrCreatePlayerTM(context.Background(), 433177, "Bukayo Saka")
	require.NoError(t, err)
	require.NotNil(t, player)
	assert.Equal(t, "England", player.Nationality)
	assert.Equal(t, "7", player.ShirtNumber)
	require.NotNil(t, player.DateOfBirth)
	require.NotNil(t, player.CurrentTeamID)

	var team models.Team
	require.NoError(t, db.First(&team, *player.CurrentTeamID).Error)
	require.NotNil(t, team.TMID)
	assert.Equal(t, int64(11), *team.TMID)
}

func TestResolveOrCreatePlayerFDMergesOntoTMRow(t *testing.T) {
	tm := &fakeTM{
		players: map[string][]providers.PlayerSearchResult{
			"Bukayo Saka": {{ID: 433177, Name: "Bukayo Saka"}},
		},
	}
	rec, db := newTestReconciler(t, tm)

	tmID := int64(433177)
	require.NoError(t, db.Create(&models.Player{TMID: &tmID, Name: "Bukayo Saka"}).Error)

	player, err := rec.ResolveOrCreatePlayerFD(context.Background(), providers.PersonRef{ID: 7787, Name: "Bukayo Saka"}, nil)
	require.NoError(t, err)
	require.NotNil(t, player.FDID)
	assert.Equal(t, int64(7787), *player.FDID)

	var count int64
	db.Model(&models.Player{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestResolveOrCreatePlayerFDWithoutMatchCreatesPartialRow(t *testing.T) {
	rec, db := newTestReconciler(t, &fakeTM{})

	teamID := uint(3)
	player, err := rec.ResolveOrCreatePlayerFD(context.Background(), providers.PersonRef{ID: 7787, Name: "Unbekannter Debütant"}, &teamID)
	require.NoError(t, err)
	require.NotNil(t, player.FDID)
	assert.Nil(t, player.TMID)

	var count int64
	db.Model(&models.Player{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestResolveOrCreateCompetitionTMIsIdempotent(t *testing.T) {
	rec, db := newTestReconciler(t, &fakeTM{})

	first, err := rec.ResolveOrCreateCompetitionTM(context.Background(), "GB1", "Premier League")
	require.NoError(t, err)
	second, err := rec.ResolveOrCreateCompetitionTM(context.Background(), "GB1", "Premier League")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	db.Model(&models.Competition{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
