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

// SeasonLoadService ist der Initiallauf für eine Kombination aus
// Wettbewerb und Saison: Wettbewerb und Teams auflösen, die Kader der
// Teams anlegen, alle Spiele laden und für beendete Spiele die
// Spielerleistungen ableiten. Der Lauf ist idempotent, ein zweiter
// Durchlauf über dieselbe Saison erzeugt keine Duplikate.
type SeasonLoadService struct {
	DB         *gorm.DB
	FD         providers.MatchDataProvider
	TM         providers.ProfileProvider
	Reconciler *Reconciler
	Seasons    *SeasonService
	Facts      *FactService
	Perf       *PerformanceService
	Logger     *zap.Logger
}

// Run lädt eine Saison eines Wettbewerbs vollständig in das Warehouse.
// Fehler auf den Top-Level-Listen (Wettbewerb, Teamliste, Spielliste)
// brechen den Lauf ab, Fehler an einzelnen Datensätzen werden geloggt
// und übersprungen.
func (s *SeasonLoadService) Run(ctx context.Context, code string, seasonYear int) error {
	log := s.Logger.With(zap.String("lauf", "season-load"), zap.String("wettbewerb", code), zap.Int("saison", seasonYear))
	log.Info("season-load gestartet")

	season, err := s.Seasons.GetOrCreateYears(seasonYear, seasonYear+1)
	if err != nil {
		return err
	}

	meta, err := s.FD.Competition(ctx, code)
	if err != nil {
		return fmt.Errorf("abbruch, wettbewerb nicht abrufbar: %w", err)
	}
	if meta == nil {
		return fmt.Errorf("abbruch, wettbewerb %s beim provider unbekannt", code)
	}
	comp, err := s.Reconciler.ResolveOrCreateCompetitionFD(ctx, meta)
	if err != nil {
		return err
	}

	entries, err := s.FD.Teams(ctx, code, seasonYear)
	if err != nil {
		return fmt.Errorf("abbruch, teamliste nicht abrufbar: %w", err)
	}
	for _, entry := range entries {
		team, err := s.Reconciler.ResolveOrCreateTeamFD(ctx, entry, &comp.ID)
		if err != nil {
			log.Warn("team nicht auflösbar, wird übersprungen", zap.String("name", entry.Name), zap.Error(err))
			continue
		}
		s.loadSquad(ctx, log, team, seasonYear)
	}

	matches, err := s.FD.Matches(ctx, code, seasonYear)
	if err != nil {
		return fmt.Errorf("abbruch, spielliste nicht abrufbar: %w", err)
	}
	processed := 0
	for _, entry := range matches {
		if err := s.processMatch(ctx, entry, season.ID, comp.ID); err != nil {
			log.Warn("spiel nicht verarbeitbar, wird übersprungen", zap.Int64("fd_match_id", entry.ID), zap.Error(err))
			continue
		}
		processed++
	}

	log.Info("season-load abgeschlossen", zap.Int("teams", len(entries)), zap.Int("spiele", processed))
	return nil
}

// loadSquad legt die Kaderspieler eines Teams für die Saison an.
// Ohne Transfermarkt-Seite des Teams gibt es keinen Kader.
func (s *SeasonLoadService) loadSquad(ctx context.Context, log *zap.Logger, team *models.Team, seasonYear int) {
	if team.TMID == nil {
		log.Warn("team ohne transfermarkt-id, kader wird nicht geladen", zap.String("name", team.Name))
		return
	}
	squad, err := s.TM.ClubPlayers(ctx, *team.TMID, seasonYear)
	if err != nil {
		log.Warn("kader nicht abrufbar", zap.String("name", team.Name), zap.Error(err))
		return
	}
	for _, sp := range squad {
		if _, err := s.Reconciler.ResolveOrCreatePlayerTM(ctx, sp.ID, sp.Name); err != nil {
			log.Warn("kaderspieler nicht auflösbar, wird übersprungen",
				zap.String("name", sp.Name), zap.Int64("tm_id", sp.ID), zap.Error(err))
		}
	}
	log.Info("kader geladen", zap.String("team", team.Name), zap.Int("spieler", len(squad)))
}

// processMatch schreibt ein Spiel der Spielliste und leitet bei neu
// beendeten Spielen die Spielerleistungen ab.
func (s *SeasonLoadService) processMatch(ctx context.Context, entry providers.MatchEntry, seasonID, competitionID uint) error {
	home, err := s.teamByFDID(entry.HomeTeam.ID)
	if err != nil {
		return fmt.Errorf("heimteam fd=%d nicht im warehouse: %w", entry.HomeTeam.ID, err)
	}
	away, err := s.teamByFDID(entry.AwayTeam.ID)
	if err != nil {
		return fmt.Errorf("auswärtsteam fd=%d nicht im warehouse: %w", entry.AwayTeam.ID, err)
	}

	match, finishedNow, err := s.Facts.UpsertMatch(entry, seasonID, competitionID, home.ID, away.ID)
	if err != nil {
		return err
	}
	if !finishedNow {
		return nil
	}

	detail, err := s.FD.MatchDetail(ctx, entry.ID)
	if err != nil {
		return fmt.Errorf("spieldetail nicht abrufbar: %w", err)
	}
	if detail == nil {
		return nil
	}
	_, err = s.Perf.ProcessMatch(ctx, detail, match)
	return err
}

func (s *SeasonLoadService) teamByFDID(fdID int64) (*models.Team, error) {
	var team models.Team
	if err := s.DB.Where("fd_id = ?", fdID).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("kein team mit fd_id %d", fdID)
		}
		return nil, err
	}
	return &team, nil
}
