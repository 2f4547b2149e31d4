package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"football-dwh/models"
	"football-dwh/providers"
)

// PlayerDataService lädt die vollständigen Transfermarkt-Historien
// aller bekannten Spieler nach: Marktwertverlauf, Transferstationen
// und Saisonstatistiken. Der Lauf ist append-only bzw. diff-basiert
// und damit beliebig wiederholbar.
type PlayerDataService struct {
	DB         *gorm.DB
	TM         providers.ProfileProvider
	Reconciler *Reconciler
	Seasons    *SeasonService
	Facts      *FactService
	Matcher    *Matcher
	Logger     *zap.Logger
}

// Run verarbeitet alle Spieler mit Transfermarkt-ID. limit > 0
// begrenzt die Anzahl der Spieler pro Lauf, 0 verarbeitet alle.
func (s *PlayerDataService) Run(ctx context.Context, limit int) error {
	log := s.Logger.With(zap.String("lauf", "player-data"))
	log.Info("player-data gestartet", zap.Int("limit", limit))

	query := s.DB.Where("tm_id IS NOT NULL").Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var players []models.Player
	if err := query.Find(&players).Error; err != nil {
		return err
	}

	for i := range players {
		player := &players[i]
		if err := s.loadHistory(ctx, player); err != nil {
			log.Warn("historie nicht verarbeitbar, spieler wird übersprungen",
				zap.String("name", player.Name), zap.Error(err))
		}
	}

	log.Info("player-data abgeschlossen", zap.Int("spieler", len(players)))
	return nil
}

// loadHistory lädt die drei Historien eines Spielers. Abruffehler je
// Historie werden geloggt und lassen die übrigen Historien unberührt.
func (s *PlayerDataService) loadHistory(ctx context.Context, player *models.Player) error {
	log := s.Logger.With(zap.String("spieler", player.Name), zap.Int64p("tm_id", player.TMID))

	values, err := s.TM.MarketValueHistory(ctx, *player.TMID)
	if err != nil {
		log.Warn("marktwert-historie nicht abrufbar", zap.Error(err))
	} else {
		s.applyMarketValues(ctx, player, values)
	}

	transfers, err := s.TM.Transfers(ctx, *player.TMID)
	if err != nil {
		log.Warn("transfer-historie nicht abrufbar", zap.Error(err))
	} else {
		s.applyTransfers(ctx, player, transfers)
	}

	stats, err := s.TM.SeasonStats(ctx, *player.TMID)
	if err != nil {
		log.Warn("saisonstatistiken nicht abrufbar", zap.Error(err))
	} else {
		s.applyStatLines(ctx, player, stats, "")
	}
	return nil
}

// applyMarketValues schreibt Marktwertpunkte append-only. Punkte ohne
// Datum sind nicht zuordenbar und werden übersprungen.
func (s *PlayerDataService) applyMarketValues(ctx context.Context, player *models.Player, entries []providers.MarketValueEntry) {
	for _, entry := range entries {
		if entry.Date == "" {
			continue
		}
		var teamID *uint
		if team, err := s.Reconciler.ResolveOrCreateTeamTM(ctx, entry.Club); err == nil && team != nil {
			teamID = &team.ID
		}
		if _, err := s.Facts.UpsertMarketValue(player, entry, teamID); err != nil {
			s.Logger.Warn("marktwert nicht schreibbar",
				zap.String("spieler", player.Name), zap.String("datum", entry.Date), zap.Error(err))
		}
	}
}

// applyTransfers schreibt Transferstationen append-only und stellt den
// aktuellen Verein des Spielers beim jüngsten Transfer nach.
func (s *PlayerDataService) applyTransfers(ctx context.Context, player *models.Player, entries []providers.TransferEntry) {
	for _, entry := range entries {
		if entry.Date == "" {
			continue
		}
		var fromID, toID, seasonID *uint
		if team, err := s.Reconciler.ResolveOrCreateTeamTM(ctx, entry.ClubFrom); err == nil && team != nil {
			fromID = &team.ID
		}
		if team, err := s.Reconciler.ResolveOrCreateTeamTM(ctx, entry.ClubTo); err == nil && team != nil {
			toID = &team.ID
		}
		if entry.Season != "" {
			if season, err := s.Seasons.GetOrCreate(entry.Season); err == nil && season != nil {
				seasonID = &season.ID
			}
		}
		if _, err := s.Facts.UpsertTransfer(player, entry, fromID, toID, seasonID); err != nil {
			s.Logger.Warn("transfer nicht schreibbar",
				zap.String("spieler", player.Name), zap.String("datum", entry.Date), zap.Error(err))
		}
	}
}

// applyStatLines schreibt Saisonstatistikzeilen. onlySeasonTM filtert
// auf eine Transfermarkt-Saisonkurzform ("24/25"); leer verarbeitet
// alle Zeilen. Zeilen ohne auflösbare Saison oder Wettbewerb werden
// übersprungen.
func (s *PlayerDataService) applyStatLines(ctx context.Context, player *models.Player, lines []providers.StatLine, onlySeasonTM string) {
	for _, line := range lines {
		if onlySeasonTM != "" && line.SeasonID != onlySeasonTM {
			continue
		}
		season, err := s.Seasons.GetOrCreate(line.SeasonID)
		if err != nil || season == nil {
			continue
		}
		comp, err := s.Reconciler.ResolveOrCreateCompetitionTM(ctx, line.CompetitionID, line.CompetitionName)
		if err != nil || comp == nil {
			s.Logger.Warn("wettbewerb der statistikzeile nicht auflösbar",
				zap.String("spieler", player.Name), zap.String("tm_id", line.CompetitionID), zap.Error(err))
			continue
		}
		if _, err := s.Facts.UpsertSeasonStat(player, season.ID, comp.ID, player.CurrentTeamID, line); err != nil {
			s.Logger.Warn("saisonstatistik nicht schreibbar",
				zap.String("spieler", player.Name), zap.String("saison", line.SeasonID), zap.Error(err))
		}
	}
}

// BackfillCrossIDs versucht, Dimensionszeilen mit nur einer
// Provider-Seite nachträglich mit ihrer Transfermarkt-ID zu
// vervollständigen. Liefert die Zahl der vervollständigten Zeilen.
func (s *PlayerDataService) BackfillCrossIDs(ctx context.Context) (int, error) {
	log := s.Logger.With(zap.String("lauf", "backfill-ids"))
	filled := 0

	var teams []models.Team
	if err := s.DB.Where("tm_id IS NULL").Find(&teams).Error; err != nil {
		return 0, err
	}
	for i := range teams {
		team := &teams[i]
		result, err := s.Matcher.FindClub(ctx, team.Name, team.ShortName)
		if err != nil || result == nil {
			continue
		}

		// Derselbe Verein kann bereits als rein TM-seitige Zeile
		// existieren (z.B. aus einer Transferstation angelegt). Dann
		// wird zusammengeführt statt die tm_id doppelt zu vergeben.
		var existing models.Team
		err = s.DB.Where("tm_id = ?", result.ID).First(&existing).Error
		if err == nil {
			if mergeErr := s.mergeTeamRows(&existing, team); mergeErr != nil {
				log.Warn("doppelte teamzeilen nicht zusammenführbar",
					zap.String("name", team.Name), zap.Error(mergeErr))
				continue
			}
			log.Info("doppelte teamzeile zusammengeführt",
				zap.String("name", existing.Name), zap.Int64("tm_id", result.ID))
			entitiesMerged.WithLabelValues("team").Inc()
			filled++
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return filled, err
		}

		team.TMID = &result.ID
		s.Reconciler.enrichTeamProfile(ctx, team)
		if err := s.DB.Save(team).Error; err != nil {
			log.Warn("tm-id am team nicht speicherbar", zap.String("name", team.Name), zap.Error(err))
			continue
		}
		log.Info("team um tm-id ergänzt", zap.String("name", team.Name), zap.Int64("tm_id", result.ID))
		entitiesMerged.WithLabelValues("team").Inc()
		filled++
	}

	var players []models.Player
	if err := s.DB.Where("tm_id IS NULL").Find(&players).Error; err != nil {
		return filled, err
	}
	for i := range players {
		player := &players[i]
		result, err := s.Matcher.FindPlayer(ctx, player.Name, 0, player.Age)
		if err != nil || result == nil || playerDenylist[result.ID] {
			continue
		}

		var existing models.Player
		err = s.DB.Where("tm_id = ?", result.ID).First(&existing).Error
		if err == nil {
			if mergeErr := s.mergePlayerRows(&existing, player); mergeErr != nil {
				log.Warn("doppelte spielerzeilen nicht zusammenführbar",
					zap.String("name", player.Name), zap.Error(mergeErr))
				continue
			}
			log.Info("doppelte spielerzeile zusammengeführt",
				zap.String("name", existing.Name), zap.Int64("tm_id", result.ID))
			entitiesMerged.WithLabelValues("player").Inc()
			filled++
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return filled, err
		}

		player.TMID = &result.ID
		s.Reconciler.enrichPlayer(ctx, player, result.ID, result)
		if err := s.DB.Save(player).Error; err != nil {
			log.Warn("tm-id am spieler nicht speicherbar", zap.String("name", player.Name), zap.Error(err))
			continue
		}
		log.Info("spieler um tm-id ergänzt", zap.String("name", player.Name), zap.Int64("tm_id", result.ID))
		entitiesMerged.WithLabelValues("player").Inc()
		filled++
	}

	log.Info("backfill abgeschlossen", zap.Int("ergänzt", filled))
	return filled, nil
}

// mergeTeamRows führt eine rein FD-seitige Teamzeile in die bestehende
// TM-seitige Zeile desselben Vereins zusammen: die FD-Attribute wandern
// auf die bestehende Zeile, alle Fremdschlüssel werden umgehängt, die
// Doppelzeile wird gelöscht. Läuft in einer Transaktion, damit ein
// Fehlschlag keine halb umgehängten Fakten hinterlässt.
func (s *PlayerDataService) mergeTeamRows(winner, loser *models.Team) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		winner.FDID = loser.FDID
		if loser.ShortName != "" {
			winner.ShortName = loser.ShortName
		}
		if loser.TLA != "" {
			winner.TLA = loser.TLA
		}
		if loser.CrestURL != "" {
			winner.CrestURL = loser.CrestURL
		}
		if winner.CompetitionID == nil {
			winner.CompetitionID = loser.CompetitionID
		}

		repoint := []struct {
			model  interface{}
			column string
		}{
			{&models.Match{}, "home_team_id"},
			{&models.Match{}, "away_team_id"},
			{&models.Player{}, "current_team_id"},
			{&models.PlayerMatchPerformance{}, "team_id"},
			{&models.PlayerSeasonStat{}, "team_id"},
			{&models.MarketValue{}, "team_id"},
			{&models.Transfer{}, "team_from_id"},
			{&models.Transfer{}, "team_to_id"},
		}
		for _, r := range repoint {
			if err := tx.Model(r.model).Where(r.column+" = ?", loser.ID).Update(r.column, winner.ID).Error; err != nil {
				return fmt.Errorf("fehler beim umhängen von %s: %w", r.column, err)
			}
		}

		// Erst löschen, dann speichern: die fd_id wandert auf die
		// Gewinnerzeile und ist eindeutig.
		if err := tx.Delete(loser).Error; err != nil {
			return fmt.Errorf("fehler beim löschen der doppelzeile: %w", err)
		}
		return tx.Save(winner).Error
	})
}

// mergePlayerRows ist das Spieler-Gegenstück zu mergeTeamRows.
func (s *PlayerDataService) mergePlayerRows(winner, loser *models.Player) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		winner.FDID = loser.FDID
		if winner.CurrentTeamID == nil {
			winner.CurrentTeamID = loser.CurrentTeamID
		}

		repoint := []struct {
			model  interface{}
			column string
		}{
			{&models.MarketValue{}, "player_id"},
			{&models.Transfer{}, "player_id"},
			{&models.PlayerSeasonStat{}, "player_id"},
			{&models.PlayerMatchPerformance{}, "player_id"},
		}
		for _, r := range repoint {
			if err := tx.Model(r.model).Where(r.column+" = ?", loser.ID).Update(r.column, winner.ID).Error; err != nil {
				return fmt.Errorf("fehler beim umhängen von %s: %w", r.column, err)
			}
		}

		if err := tx.Delete(loser).Error; err != nil {
			return fmt.Errorf("fehler beim löschen der doppelzeile: %w", err)
		}
		return tx.Save(winner).Error
	})
}
