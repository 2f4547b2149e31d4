package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"football-dwh/models"
	"football-dwh/providers"
)

// DailyService ist der nächtliche Inkrementallauf: Vereinsfinanzen
// nachziehen, je Spieler den jüngsten Marktwert und Transfer sowie die
// Statistikzeilen der laufenden Saison schreiben und die Spiele des
// Vortags einlesen.
type DailyService struct {
	DB          *gorm.DB
	FD          providers.MatchDataProvider
	TM          providers.ProfileProvider
	Facts       *FactService
	Seasons     *SeasonService
	PlayerData  *PlayerDataService
	SeasonLoad  *SeasonLoadService
	Competition string
	Logger      *zap.Logger
}

func (s *DailyService) Run(ctx context.Context) error {
	log := s.Logger.With(zap.String("lauf", "daily"))
	log.Info("daily gestartet")

	if err := s.refreshClubFinancials(ctx, log); err != nil {
		return err
	}
	if err := s.refreshPlayers(ctx, log); err != nil {
		return err
	}
	if err := s.processYesterday(ctx, log); err != nil {
		return err
	}

	log.Info("daily abgeschlossen")
	return nil
}

// refreshClubFinancials zieht Marktwert und Transferrekord aller
// Vereine mit Transfermarkt-Seite nach. Geschrieben wird nur bei
// Abweichung.
func (s *DailyService) refreshClubFinancials(ctx context.Context, log *zap.Logger) error {
	var teams []models.Team
	if err := s.DB.Where("tm_id IS NOT NULL").Find(&teams).Error; err != nil {
		return err
	}
	updated := 0
	for i := range teams {
		team := &teams[i]
		profile, err := s.TM.ClubProfile(ctx, *team.TMID)
		if err != nil || profile == nil {
			if err != nil {
				log.Warn("vereinsprofil nicht abrufbar", zap.String("name", team.Name), zap.Error(err))
			}
			continue
		}
		if team.CurrentMarketValue == profile.CurrentMarketValue &&
			team.CurrentTransferRecord == profile.CurrentTransferRecord {
			continue
		}
		team.CurrentMarketValue = profile.CurrentMarketValue
		team.CurrentTransferRecord = profile.CurrentTransferRecord
		if err := s.DB.Save(team).Error; err != nil {
			log.Warn("vereinsfinanzen nicht speicherbar", zap.String("name", team.Name), zap.Error(err))
			continue
		}
		updated++
	}
	log.Info("vereinsfinanzen nachgezogen", zap.Int("teams", len(teams)), zap.Int("aktualisiert", updated))
	return nil
}

// refreshPlayers schreibt je Spieler den jüngsten Marktwertpunkt, die
// jüngste Transferstation und die Statistikzeilen der laufenden
// Saison. Die vollständigen Historien bleiben dem player-data-Lauf
// überlassen.
func (s *DailyService) refreshPlayers(ctx context.Context, log *zap.Logger) error {
	currentSeason := CurrentTMName(time.Now())

	var players []models.Player
	if err := s.DB.Where("tm_id IS NOT NULL").Order("id").Find(&players).Error; err != nil {
		return err
	}
	for i := range players {
		player := &players[i]

		values, err := s.TM.MarketValueHistory(ctx, *player.TMID)
		if err != nil {
			log.Warn("marktwert-historie nicht abrufbar", zap.String("spieler", player.Name), zap.Error(err))
		} else if latest := latestMarketValue(values); latest != nil {
			s.PlayerData.applyMarketValues(ctx, player, []providers.MarketValueEntry{*latest})
		}

		transfers, err := s.TM.Transfers(ctx, *player.TMID)
		if err != nil {
			log.Warn("transfer-historie nicht abrufbar", zap.String("spieler", player.Name), zap.Error(err))
		} else if latest := latestTransfer(transfers); latest != nil {
			s.PlayerData.applyTransfers(ctx, player, []providers.TransferEntry{*latest})
		}

		stats, err := s.TM.SeasonStats(ctx, *player.TMID)
		if err != nil {
			log.Warn("saisonstatistiken nicht abrufbar", zap.String("spieler", player.Name), zap.Error(err))
		} else {
			s.PlayerData.applyStatLines(ctx, player, stats, currentSeason)
		}
	}
	log.Info("spielerdaten nachgezogen", zap.Int("spieler", len(players)), zap.String("saison", currentSeason))
	return nil
}

// latestMarketValue liefert den jüngsten datierten Punkt der Historie.
// Die ISO-Datumsform macht den Stringvergleich chronologisch korrekt.
func latestMarketValue(entries []providers.MarketValueEntry) *providers.MarketValueEntry {
	var latest *providers.MarketValueEntry
	for i := range entries {
		e := &entries[i]
		if e.Date == "" {
			continue
		}
		if latest == nil || e.Date > latest.Date {
			latest = e
		}
	}
	return latest
}

func latestTransfer(entries []providers.TransferEntry) *providers.TransferEntry {
	var latest *providers.TransferEntry
	for i := range entries {
		e := &entries[i]
		if e.Date == "" {
			continue
		}
		if latest == nil || e.Date > latest.Date {
			latest = e
		}
	}
	return latest
}

// processYesterday liest die Spiele des Vortags für den konfigurierten
// Wettbewerb ein. Ohne vorherigen season-load fehlt die
// Wettbewerbszeile, dann wird der Schritt geloggt und ausgelassen.
func (s *DailyService) processYesterday(ctx context.Context, log *zap.Logger) error {
	var comp models.Competition
	if err := s.DB.Where("fd_id = ?", s.Competition).First(&comp).Error; err != nil {
		log.Warn("wettbewerb noch nicht im warehouse, vortagsspiele werden ausgelassen",
			zap.String("wettbewerb", s.Competition))
		return nil
	}

	now := time.Now()
	startYear := now.Year()
	if now.Month() < time.July {
		startYear--
	}
	season, err := s.Seasons.GetOrCreateYears(startYear, startYear+1)
	if err != nil {
		return err
	}

	date := now.AddDate(0, 0, -1).Format("2006-01-02")
	matches, err := s.FD.MatchesBetween(ctx, s.Competition, date, date)
	if err != nil {
		log.Warn("vortagsspiele nicht abrufbar", zap.String("datum", date), zap.Error(err))
		return nil
	}
	for _, entry := range matches {
		if err := s.SeasonLoad.processMatch(ctx, entry, season.ID, comp.ID); err != nil {
			log.Warn("vortagsspiel nicht verarbeitbar, wird übersprungen",
				zap.Int64("fd_match_id", entry.ID), zap.Error(err))
		}
	}
	log.Info("vortagsspiele verarbeitet", zap.String("datum", date), zap.Int("spiele", len(matches)))
	return nil
}
