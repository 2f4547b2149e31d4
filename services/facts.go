package services

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"football-dwh/models"
	"football-dwh/providers"
)

// FactService schreibt Faktenzeilen mit den je Faktentyp passenden
// Upsert-Regeln: Marktwerte und Transfers sind append-only mit
// Dedup-Schlüssel, Saisonstatistiken werden bei Abweichung in-place
// aktualisiert, Spiele wechseln nur vorwärts in den Status FINISHED.
type FactService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

func NewFactService(db *gorm.DB, logger *zap.Logger) *FactService {
	return &FactService{DB: db, Logger: logger}
}

// UpsertMarketValue legt einen Marktwertpunkt an, falls für
// (Spieler, Datum) noch keiner existiert. Bestehende Punkte werden nie
// verändert, die Historie ist append-only.
func (f *FactService) UpsertMarketValue(player *models.Player, entry providers.MarketValueEntry, teamID *uint) (bool, error) {
	var existing models.MarketValue
	err := f.DB.Where("player_id = ? AND date_recorded = ?", player.ID, entry.Date).First(&existing).Error
	if err == nil {
		factsSkipped.WithLabelValues("market_value").Inc()
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("fehler beim nachschlagen des marktwerts: %w", err)
	}

	mv := models.MarketValue{
		PlayerID:       player.ID,
		DateRecorded:   entry.Date,
		TeamID:         teamID,
		MarketValueEUR: entry.MarketValue,
	}
	if err := f.DB.Create(&mv).Error; err != nil {
		if qerr := f.DB.Where("player_id = ? AND date_recorded = ?", player.ID, entry.Date).First(&existing).Error; qerr == nil {
			factsSkipped.WithLabelValues("market_value").Inc()
			return false, nil
		}
		return false, fmt.Errorf("fehler beim anlegen des marktwerts für %s: %w", player.Name, err)
	}
	f.Logger.Info("marktwert angelegt",
		zap.String("spieler", player.Name),
		zap.String("datum", entry.Date),
		zap.Int64("wert_eur", entry.MarketValue))
	factsInserted.WithLabelValues("market_value").Inc()
	return true, nil
}

// UpsertTransfer legt eine Transferstation an, falls für
// (Spieler, Datum) noch keine existiert. Beim Anlegen wird der
// aktuelle Verein des Spielers auf den Zielverein gestellt.
func (f *FactService) UpsertTransfer(player *models.Player, entry providers.TransferEntry, fromID, toID, seasonID *uint) (bool, error) {
	var existing models.Transfer
	err := f.DB.Where("player_id = ? AND date_recorded = ?", player.ID, entry.Date).First(&existing).Error
	if err == nil {
		factsSkipped.WithLabelValues("transfer").Inc()
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("fehler beim nachschlagen des transfers: %w", err)
	}

	tf := models.Transfer{
		PlayerID:       player.ID,
		DateRecorded:   entry.Date,
		TeamFromID:     fromID,
		TeamToID:       toID,
		SeasonID:       seasonID,
		MarketValueEUR: entry.MarketValue,
		FeeEUR:         entry.Fee,
	}
	if err := f.DB.Create(&tf).Error; err != nil {
		if qerr := f.DB.Where("player_id = ? AND date_recorded = ?", player.ID, entry.Date).First(&existing).Error; qerr == nil {
			factsSkipped.WithLabelValues("transfer").Inc()
			return false, nil
		}
		return false, fmt.Errorf("fehler beim anlegen des transfers für %s: %w", player.Name, err)
	}
	if toID != nil {
		player.CurrentTeamID = toID
		if err := f.DB.Save(player).Error; err != nil {
			return false, fmt.Errorf("fehler beim aktualisieren des aktuellen vereins von %s: %w", player.Name, err)
		}
	}
	f.Logger.Info("transfer angelegt",
		zap.String("spieler", player.Name),
		zap.String("datum", entry.Date),
		zap.Int64("abloese_eur", entry.Fee))
	factsInserted.WithLabelValues("transfer").Inc()
	return true, nil
}

// UpsertSeasonStat schreibt die Saisonstatistikzeile zu
// (Spieler, Saison, Wettbewerb). Existiert die Zeile und weicht in
// mindestens einem Zähler ab, wird sie in-place aktualisiert;
// andernfalls wird sie unverändert übersprungen.
func (f *FactService) UpsertSeasonStat(player *models.Player, seasonID, competitionID uint, teamID *uint, line providers.StatLine) (bool, error) {
	var existing models.PlayerSeasonStat
	err := f.DB.Where("player_id = ? AND season_id = ? AND competition_id = ?", player.ID, seasonID, competitionID).First(&existing).Error
	if err == nil {
		if statLineEqual(&existing, line) {
			factsSkipped.WithLabelValues("season_stat").Inc()
			return false, nil
		}
		existing.TeamID = teamID
		applyStatLine(&existing, line)
		if err := f.DB.Save(&existing).Error; err != nil {
			return false, fmt.Errorf("fehler beim aktualisieren der saisonstatistik für %s: %w", player.Name, err)
		}
		f.Logger.Info("saisonstatistik aktualisiert",
			zap.String("spieler", player.Name),
			zap.Uint("season_id", seasonID),
			zap.Uint("competition_id", competitionID))
		factsUpdated.WithLabelValues("season_stat").Inc()
		return true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("fehler beim nachschlagen der saisonstatistik: %w", err)
	}

	stat := models.PlayerSeasonStat{
		PlayerID:      player.ID,
		SeasonID:      seasonID,
		CompetitionID: competitionID,
		TeamID:        teamID,
	}
	applyStatLine(&stat, line)
	if err := f.DB.Create(&stat).Error; err != nil {
		if qerr := f.DB.Where("player_id = ? AND season_id = ? AND competition_id = ?", player.ID, seasonID, competitionID).First(&existing).Error; qerr == nil {
			factsSkipped.WithLabelValues("season_stat").Inc()
			return false, nil
		}
		return false, fmt.Errorf("fehler beim anlegen der saisonstatistik für %s: %w", player.Name, err)
	}
	f.Logger.Info("saisonstatistik angelegt",
		zap.String("spieler", player.Name),
		zap.Uint("season_id", seasonID),
		zap.Uint("competition_id", competitionID))
	factsInserted.WithLabelValues("season_stat").Inc()
	return true, nil
}

func statLineEqual(stat *models.PlayerSeasonStat, line providers.StatLine) bool {
	return stat.Appearances == line.Appearances &&
		stat.Goals == line.Goals &&
		stat.Assists == line.Assists &&
		stat.YellowCards == line.YellowCards &&
		stat.RedCards == line.RedCards &&
		stat.MinutesPlayed == line.MinutesPlayed
}

func applyStatLine(stat *models.PlayerSeasonStat, line providers.StatLine) {
	stat.Appearances = line.Appearances
	stat.Goals = line.Goals
	stat.Assists = line.Assists
	stat.YellowCards = line.YellowCards
	stat.RedCards = line.RedCards
	stat.MinutesPlayed = line.MinutesPlayed
}

// UpsertMatch legt ein Spiel an oder führt den Statuswechsel einer
// bestehenden Zeile aus. Eine Zeile mit Status FINISHED ist endgültig
// und wird nie mehr angefasst. Der zweite Rückgabewert meldet, ob das
// Spiel mit diesem Aufruf neu in den Endstand gewechselt ist und die
// Spielerleistungen daher noch abzuleiten sind.
func (f *FactService) UpsertMatch(entry providers.MatchEntry, seasonID, competitionID, homeID, awayID uint) (*models.Match, bool, error) {
	var match models.Match
	err := f.DB.Where("fd_match_id = ?", entry.ID).First(&match).Error
	if err == nil {
		if match.Status == "FINISHED" {
			factsSkipped.WithLabelValues("match").Inc()
			return &match, false, nil
		}
		match.Status = entry.Status
		match.Date = entry.UTCDate
		match.HomeScore = entry.HomeScore
		match.AwayScore = entry.AwayScore
		if err := f.DB.Save(&match).Error; err != nil {
			return nil, false, fmt.Errorf("fehler beim aktualisieren des spiels fd=%d: %w", entry.ID, err)
		}
		f.Logger.Info("spielstatus aktualisiert",
			zap.Int64("fd_match_id", entry.ID),
			zap.String("status", entry.Status))
		factsUpdated.WithLabelValues("match").Inc()
		return &match, entry.Status == "FINISHED", nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("fehler beim nachschlagen des spiels fd=%d: %w", entry.ID, err)
	}

	match = models.Match{
		FDMatchID:     entry.ID,
		Date:          entry.UTCDate,
		SeasonID:      seasonID,
		CompetitionID: competitionID,
		HomeTeamID:    homeID,
		AwayTeamID:    awayID,
		HomeScore:     entry.HomeScore,
		AwayScore:     entry.AwayScore,
		Status:        entry.Status,
	}
	if err := f.DB.Create(&match).Error; err != nil {
		var existing models.Match
		if qerr := f.DB.Where("fd_match_id = ?", entry.ID).First(&existing).Error; qerr == nil {
			factsSkipped.WithLabelValues("match").Inc()
			return &existing, false, nil
		}
		return nil, false, fmt.Errorf("fehler beim anlegen des spiels fd=%d: %w", entry.ID, err)
	}
	f.Logger.Info("spiel angelegt",
		zap.Int64("fd_match_id", entry.ID),
		zap.String("status", entry.Status))
	factsInserted.WithLabelValues("match").Inc()
	return &match, entry.Status == "FINISHED", nil
}
