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

// PerformanceService leitet aus den Detailereignissen eines beendeten
// Spiels die Leistungszeilen der beteiligten Spieler ab: Einsatzminuten
// aus Aufstellung und Wechseln, Tore, Vorlagen und Karten aus den
// Ereignislisten.
type PerformanceService struct {
	DB         *gorm.DB
	Reconciler *Reconciler
	Logger     *zap.Logger
}

func NewPerformanceService(db *gorm.DB, reconciler *Reconciler, logger *zap.Logger) *PerformanceService {
	return &PerformanceService{DB: db, Reconciler: reconciler, Logger: logger}
}

// perfAccum sammelt die Ereignisse eines Spielers während der
// Auswertung eines Spiels, bevor daraus die Faktenzeile wird.
type perfAccum struct {
	name      string
	teamID    *uint
	started   bool
	enteredAt *int
	leftAt    *int
	goals     int
	assists   int
	yellow    int
	red       int
}

// ProcessMatch wertet ein Spieldetail aus und persistiert die
// Leistungszeilen. Nur Spieler mit Einsatzminuten oder einer Karte
// erhalten eine Zeile; reine Bankspieler nicht. Bereits vorhandene
// Zeilen zum selben Spiel bleiben unangetastet. Liefert die Zahl der
// neu angelegten Zeilen.
func (p *PerformanceService) ProcessMatch(ctx context.Context, detail *providers.MatchDetail, match *models.Match) (int, error) {
	log := p.Logger.With(zap.Int64("fd_match_id", detail.ID))

	// Reguläre Dauer 90 Minuten, verlängert auf die späteste
	// Ereignisminute (Nachspielzeit, Verlängerung).
	duration := 90
	bump := func(minute int) {
		if minute > duration {
			duration = minute
		}
	}
	for _, g := range detail.Goals {
		bump(g.Minute)
	}
	for _, b := range detail.Bookings {
		bump(b.Minute)
	}
	for _, s := range detail.Substitutions {
		bump(s.Minute)
	}

	roster := map[int64]*perfAccum{}
	homeTeamID := match.HomeTeamID
	awayTeamID := match.AwayTeamID
	addSheet := func(sheet providers.TeamSheet, teamID uint) {
		id := teamID
		for _, ref := range sheet.Lineup {
			roster[ref.ID] = &perfAccum{name: ref.Name, teamID: &id, started: true}
		}
		for _, ref := range sheet.Bench {
			roster[ref.ID] = &perfAccum{name: ref.Name, teamID: &id}
		}
	}
	addSheet(detail.Home, homeTeamID)
	addSheet(detail.Away, awayTeamID)

	// Ereignisse können in seltenen Fällen Spieler außerhalb der
	// gelieferten Aufstellung nennen; die bekommen einen leeren Eintrag.
	get := func(id int64) *perfAccum {
		if acc, ok := roster[id]; ok {
			return acc
		}
		acc := &perfAccum{}
		roster[id] = acc
		return acc
	}

	for _, s := range detail.Substitutions {
		minute := s.Minute
		get(s.PlayerOutID).leftAt = &minute
		get(s.PlayerInID).enteredAt = &minute
	}
	for _, g := range detail.Goals {
		get(g.ScorerID).goals++
		if g.AssistID != nil {
			get(*g.AssistID).assists++
		}
	}
	for _, b := range detail.Bookings {
		acc := get(b.PlayerID)
		if b.Card == "YELLOW" {
			acc.yellow++
		} else {
			acc.red++
		}
	}

	created := 0
	for fdID, acc := range roster {
		minutes := acc.minutes(duration)
		if minutes == 0 && acc.yellow == 0 && acc.red == 0 {
			continue
		}

		player, err := p.Reconciler.ResolveOrCreatePlayerFD(ctx, providers.PersonRef{ID: fdID, Name: acc.name}, acc.teamID)
		if err != nil {
			log.Warn("spieler der aufstellung nicht auflösbar, leistung wird übersprungen",
				zap.Int64("fd_id", fdID), zap.String("name", acc.name), zap.Error(err))
			continue
		}

		var existing models.PlayerMatchPerformance
		err = p.DB.Where("player_id = ? AND match_id = ?", player.ID, match.ID).First(&existing).Error
		if err == nil {
			factsSkipped.WithLabelValues("performance").Inc()
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, fmt.Errorf("fehler beim nachschlagen der spielerleistung: %w", err)
		}

		perf := models.PlayerMatchPerformance{
			PlayerID:      player.ID,
			MatchID:       match.ID,
			TeamID:        acc.teamID,
			MinutesPlayed: minutes,
			Goals:         acc.goals,
			Assists:       acc.assists,
			YellowCards:   acc.yellow,
			RedCards:      acc.red,
		}
		if err := p.DB.Create(&perf).Error; err != nil {
			if qerr := p.DB.Where("player_id = ? AND match_id = ?", player.ID, match.ID).First(&existing).Error; qerr == nil {
				factsSkipped.WithLabelValues("performance").Inc()
				continue
			}
			return created, fmt.Errorf("fehler beim anlegen der spielerleistung für %s: %w", player.Name, err)
		}
		factsInserted.WithLabelValues("performance").Inc()
		created++
	}

	log.Info("spielerleistungen abgeleitet", zap.Int("angelegt", created), zap.Int("dauer_minuten", duration))
	return created, nil
}

// minutes berechnet die Einsatzzeit: Startelfspieler spielen bis zur
// Auswechslung oder zum Abpfiff, Einwechselspieler ab ihrer
// Einwechslung bis zur eigenen Auswechslung oder zum Abpfiff.
func (a *perfAccum) minutes(duration int) int {
	if a.started {
		if a.leftAt != nil {
			return *a.leftAt
		}
		return duration
	}
	if a.enteredAt != nil {
		if a.leftAt != nil {
			return *a.leftAt - *a.enteredAt
		}
		return duration - *a.enteredAt
	}
	return 0
}
