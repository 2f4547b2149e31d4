package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"football-dwh/models"
	"football-dwh/providers"
)

// playerDenylist enthält Transfermarkt-IDs, deren Profilabruf beim
// Provider dauerhaft fehlschlägt (verstorbene Spieler liefern dort
// kein Profil mehr). Diese IDs werden nie angelegt oder abgefragt.
var playerDenylist = map[int64]bool{
	340950: true,
}

// Reconciler löst Provider-Identitäten auf Warehouse-Zeilen auf.
// Jede Resolve-Methode folgt demselben Muster: Lookup über die eigene
// Provider-ID, danach Cross-Provider-Match über die Namenssuche, dann
// entweder Merge auf die bestehende Zeile oder Neuanlage. Schlägt ein
// Insert wegen eines parallel entstandenen Duplikats fehl, wird die
// Zeile nachgeschlagen statt der Lauf abgebrochen.
type Reconciler struct {
	DB      *gorm.DB
	TM      providers.ProfileProvider
	Matcher *Matcher
	Logger  *zap.Logger
}

func NewReconciler(db *gorm.DB, tm providers.ProfileProvider, matcher *Matcher, logger *zap.Logger) *Reconciler {
	return &Reconciler{DB: db, TM: tm, Matcher: matcher, Logger: logger}
}

// --- Wettbewerbe ---

// ResolveOrCreateCompetitionFD löst einen Football-Data-Wettbewerb auf
// und reichert ihn beim Anlegen per Namenssuche um die
// Transfermarkt-Seite an.
func (r *Reconciler) ResolveOrCreateCompetitionFD(ctx context.Context, meta *providers.CompetitionMeta) (*models.Competition, error) {
	var comp models.Competition
	err := r.DB.Where("fd_id = ?", meta.Code).First(&comp).Error
	if err == nil {
		return &comp, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("fehler beim nachschlagen des wettbewerbs %s: %w", meta.Code, err)
	}

	fdID := meta.Code
	comp = models.Competition{
		FDID:      &fdID,
		Name:      meta.Name,
		EmblemURL: meta.Emblem,
	}
	result, err := r.Matcher.FindCompetition(ctx, meta.Name)
	if err != nil && !errors.Is(err, providers.ErrNoResponse) {
		return nil, err
	}
	if result != nil {
		tmID := result.ID
		comp.TMID = &tmID
		comp.Country = result.Country
		comp.Continent = result.Continent
	}
	return r.createCompetition(&comp)
}

// ResolveOrCreateCompetitionTM löst einen nur über Transfermarkt
// bekannten Wettbewerb auf (Saisonstatistiken nennen fremde
// Wettbewerbe nur mit TM-ID und Name).
func (r *Reconciler) ResolveOrCreateCompetitionTM(ctx context.Context, tmID, name string) (*models.Competition, error) {
	if tmID == "" {
		return nil, nil
	}
	var comp models.Competition
	err := r.DB.Where("tm_id = ?", tmID).First(&comp).Error
	if err == nil {
		return &comp, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("fehler beim nachschlagen des wettbewerbs tm=%s: %w", tmID, err)
	}

	comp = models.Competition{TMID: &tmID, Name: name}
	return r.createCompetition(&comp)
}

func (r *Reconciler) createCompetition(comp *models.Competition) (*models.Competition, error) {
	if err := r.DB.Create(comp).Error; err != nil {
		if existing, ok := r.requeryCompetition(comp); ok {
			return existing, nil
		}
		return nil, fmt.Errorf("fehler beim anlegen des wettbewerbs %s: %w", comp.Name, err)
	}
	r.Logger.Info("wettbewerb angelegt",
		zap.String("name", comp.Name),
		zap.Stringp("fd_id", comp.FDID),
		zap.Stringp("tm_id", comp.TMID))
	entitiesCreated.WithLabelValues("competition").Inc()
	return comp, nil
}

func (r *Reconciler) requeryCompetition(comp *models.Competition) (*models.Competition, bool) {
	var existing models.Competition
	if comp.FDID != nil {
		if err := r.DB.Where("fd_id = ?", *comp.FDID).First(&existing).Error; err == nil {
			return &existing, true
		}
	}
	if comp.TMID != nil {
		if err := r.DB.Where("tm_id = ?", *comp.TMID).First(&existing).Error; err == nil {
			return &existing, true
		}
	}
	return nil, false
}

// --- Teams ---

// ResolveOrCreateTeamFD löst ein Football-Data-Team auf. Findet die
// Namenssuche das Transfermarkt-Gegenstück einer bereits bestehenden
// TM-Zeile, werden die FD-Felder dort angehängt statt eine zweite
// Zeile anzulegen.
func (r *Reconciler) ResolveOrCreateTeamFD(ctx context.Context, entry providers.TeamEntry, competitionID *uint) (*models.Team, error) {
	var team models.Team
	err := r.DB.Where("fd_id = ?", entry.ID).First(&team).Error
	if err == nil {
		return &team, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("fehler beim nachschlagen des teams fd=%d: %w", entry.ID, err)
	}

	var tmID *int64
	result, err := r.Matcher.FindClub(ctx, entry.Name, entry.ShortName)
	if err != nil && !errors.Is(err, providers.ErrNoResponse) {
		return nil, err
	}
	if result != nil {
		tmID = &result.ID
	}

	if tmID != nil {
		if mergeErr := r.DB.Where("tm_id = ?", *tmID).First(&team).Error; mergeErr == nil {
			fdID := entry.ID
			team.FDID = &fdID
			team.ShortName = entry.ShortName
			team.TLA = entry.TLA
			team.CrestURL = entry.Crest
			if competitionID != nil {
				team.CompetitionID = competitionID
			}
			if saveErr := r.DB.Save(&team).Error; saveErr != nil {
				return nil, fmt.Errorf("fehler beim mergen des teams %s: %w", team.Name, saveErr)
			}
			r.Logger.Info("team über provider hinweg zusammengeführt",
				zap.String("name", team.Name),
				zap.Int64("fd_id", entry.ID),
				zap.Int64("tm_id", *tmID))
			entitiesMerged.WithLabelValues("team").Inc()
			return &team, nil
		}
	}

	fdID := entry.ID
	team = models.Team{
		FDID:          &fdID,
		TMID:          tmID,
		Name:          entry.Name,
		ShortName:     entry.ShortName,
		TLA:           entry.TLA,
		CrestURL:      entry.Crest,
		CompetitionID: competitionID,
	}
	r.enrichTeamProfile(ctx, &team)
	return r.createTeam(&team)
}

// ResolveOrCreateTeamTM löst ein nur über Transfermarkt referenziertes
// Team auf (Gegenvereine in Transfers und Marktwerten). ID 0 steht
// beim Provider für "vereinslos" und liefert nil ohne Fehler.
func (r *Reconciler) ResolveOrCreateTeamTM(ctx context.Context, ref providers.ClubRef) (*models.Team, error) {
	if ref.ID == 0 {
		return nil, nil
	}
	var team models.Team
	err := r.DB.Where("tm_id = ?", ref.ID).First(&team).Error
	if err == nil {
		return &team, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("fehler beim nachschlagen des teams tm=%d: %w", ref.ID, err)
	}

	tmID := ref.ID
	team = models.Team{TMID: &tmID, Name: ref.Name}
	r.enrichTeamProfile(ctx, &team)
	return r.createTeam(&team)
}

// enrichTeamProfile ergänzt eine neue Teamzeile um die Stammdaten aus
// dem Vereinsprofil. Fehler sind hier nie fatal, die Zeile bleibt dann
// ohne Profildaten.
func (r *Reconciler) enrichTeamProfile(ctx context.Context, team *models.Team) {
	if team.TMID == nil {
		return
	}
	profile, err := r.TM.ClubProfile(ctx, *team.TMID)
	if err != nil || profile == nil {
		if err != nil {
			r.Logger.Warn("vereinsprofil nicht abrufbar", zap.Int64("tm_id", *team.TMID), zap.Error(err))
		}
		return
	}
	if profile.FoundedOn != "" {
		if founded, perr := time.Parse("2006-01-02", profile.FoundedOn); perr == nil {
			team.Founded = &founded
		}
	}
	team.Stadium = profile.StadiumName
	team.CurrentTransferRecord = profile.CurrentTransferRecord
	team.CurrentMarketValue = profile.CurrentMarketValue
}

func (r *Reconciler) createTeam(team *models.Team) (*models.Team, error) {
	if err := r.DB.Create(team).Error; err != nil {
		var existing models.Team
		if team.FDID != nil {
			if qerr := r.DB.Where("fd_id = ?", *team.FDID).First(&existing).Error; qerr == nil {
				return &existing, nil
			}
		}
		if team.TMID != nil {
			if qerr := r.DB.Where("tm_id = ?", *team.TMID).First(&existing).Error; qerr == nil {
				return &existing, nil
			}
		}
		return nil, fmt.Errorf("fehler beim anlegen des teams %s: %w", team.Name, err)
	}
	r.Logger.Info("team angelegt",
		zap.String("name", team.Name),
		zap.Int64p("fd_id", team.FDID),
		zap.Int64p("tm_id", team.TMID))
	entitiesCreated.WithLabelValues("team").Inc()
	return team, nil
}

// --- Spieler ---

// ResolveOrCreatePlayerTM löst einen Spieler über seine
// Transfermarkt-ID auf und legt ihn bei Bedarf mit Profil- und
// Suchdaten an. IDs auf der Denylist liefern nil ohne Fehler.
func (r *Reconciler) ResolveOrCreatePlayerTM(ctx context.Context, tmID int64, name string) (*models.Player, error) {
	if playerDenylist[tmID] {
		r.Logger.Warn("spieler steht auf der denylist und wird übersprungen", zap.Int64("tm_id", tmID), zap.String("name", name))
		return nil, nil
	}
	var player models.Player
	err := r.DB.Where("tm_id = ?", tmID).First(&player).Error
	if err == nil {
		return &player, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("fehler beim nachschlagen des spielers tm=%d: %w", tmID, err)
	}

	// Position, Nationalität und aktueller Verein kommen nur über die
	// Suche, das Profil liefert Geburtsdatum und Rückennummer.
	search, err := r.Matcher.FindPlayer(ctx, name, tmID, nil)
	if err != nil && !errors.Is(err, providers.ErrNoResponse) {
		return nil, err
	}

	id := tmID
	player = models.Player{TMID: &id, Name: name}
	r.enrichPlayer(ctx, &player, tmID, search)
	return r.createPlayer(&player)
}

// ResolveOrCreatePlayerFD löst eine Football-Data-Person auf, wie sie
// in Aufstellungen vorkommt. Findet die Namenssuche die
// Transfermarkt-Seite einer bestehenden Zeile, wird die FD-ID dort
// angehängt; andernfalls entsteht eine reine FD-Zeile, die der
// Backfill später vervollständigt.
func (r *Reconciler) ResolveOrCreatePlayerFD(ctx context.Context, ref providers.PersonRef, teamID *uint) (*models.Player, error) {
	var player models.Player
	err := r.DB.Where("fd_id = ?", ref.ID).First(&player).Error
	if err == nil {
		return &player, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("fehler beim nachschlagen des spielers fd=%d: %w", ref.ID, err)
	}

	result, err := r.Matcher.FindPlayer(ctx, ref.Name, 0, nil)
	if err != nil && !errors.Is(err, providers.ErrNoResponse) {
		return nil, err
	}
	if result != nil && !playerDenylist[result.ID] {
		if mergeErr := r.DB.Where("tm_id = ?", result.ID).First(&player).Error; mergeErr == nil {
			fdID := ref.ID
			player.FDID = &fdID
			if saveErr := r.DB.Save(&player).Error; saveErr != nil {
				return nil, fmt.Errorf("fehler beim mergen des spielers %s: %w", player.Name, saveErr)
			}
			r.Logger.Info("spieler über provider hinweg zusammengeführt",
				zap.String("name", player.Name),
				zap.Int64("fd_id", ref.ID),
				zap.Int64("tm_id", result.ID))
			entitiesMerged.WithLabelValues("player").Inc()
			return &player, nil
		}
		fdID := ref.ID
		tmID := result.ID
		player = models.Player{FDID: &fdID, TMID: &tmID, Name: ref.Name, CurrentTeamID: teamID}
		r.enrichPlayer(ctx, &player, tmID, result)
		return r.createPlayer(&player)
	}

	fdID := ref.ID
	player = models.Player{FDID: &fdID, Name: ref.Name, CurrentTeamID: teamID}
	return r.createPlayer(&player)
}

// enrichPlayer ergänzt eine neue Spielerzeile um Profildaten
// (Geburtsdatum, Rückennummer, Hauptposition) und Suchdaten
// (Nationalität, aktueller Verein). Providerfehler sind hier nie
// fatal, die Zeile bleibt dann unvollständig.
func (r *Reconciler) enrichPlayer(ctx context.Context, player *models.Player, tmID int64, search *providers.PlayerSearchResult) {
	profile, err := r.TM.PlayerProfile(ctx, tmID)
	if err != nil {
		r.Logger.Warn("spielerprofil nicht abrufbar", zap.Int64("tm_id", tmID), zap.Error(err))
	}
	if profile != nil {
		if profile.Name != "" {
			player.Name = profile.Name
		}
		player.Position = profile.PositionMain
		player.ShirtNumber = profile.ShirtNumber
		if profile.Age != nil {
			player.Age = profile.Age
		}
		if profile.DateOfBirth != "" {
			if dob, perr := time.Parse("2006-01-02", profile.DateOfBirth); perr == nil {
				player.DateOfBirth = &dob
			}
		}
	}
	if search != nil {
		if player.Position == "" {
			player.Position = search.Position
		}
		player.PositionName = search.Position
		if player.Age == nil && search.Age != nil {
			player.Age = search.Age
		}
		if len(search.Nationalities) > 0 {
			player.Nationality = search.Nationalities[0]
		}
		if search.Club.ID != 0 {
			if team, terr := r.ResolveOrCreateTeamTM(ctx, search.Club); terr == nil && team != nil {
				player.CurrentTeamID = &team.ID
			}
		}
	}
}

func (r *Reconciler) createPlayer(player *models.Player) (*models.Player, error) {
	if err := r.DB.Create(player).Error; err != nil {
		var existing models.Player
		if player.TMID != nil {
			if qerr := r.DB.Where("tm_id = ?", *player.TMID).First(&existing).Error; qerr == nil {
				return &existing, nil
			}
		}
		if player.FDID != nil {
			if qerr := r.DB.Where("fd_id = ?", *player.FDID).First(&existing).Error; qerr == nil {
				return &existing, nil
			}
		}
		return nil, fmt.Errorf("fehler beim anlegen des spielers %s: %w", player.Name, err)
	}
	r.Logger.Info("spieler angelegt",
		zap.String("name", player.Name),
		zap.Int64p("fd_id", player.FDID),
		zap.Int64p("tm_id", player.TMID))
	entitiesCreated.WithLabelValues("player").Inc()
	return player, nil
}
