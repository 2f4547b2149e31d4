package footballdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"football-dwh/config"
	"football-dwh/providers"
)

// Fetcher kapselt die Interaktion mit der Football-Data v4 API.
// Authentifizierung über statischen X-Auth-Token-Header; das knappe
// Rate-Budget des freien Tiers wird über die feste Call-Pause des
// Clients eingehalten.
type Fetcher struct {
	BaseURL string
	Client  *providers.Client
	Logger  *zap.Logger
}

// NewFetcher erstellt eine neue Instanz des Football-Data-Fetchers.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	policy := providers.DefaultRetryPolicy(cfg.RetryAttempts, cfg.RetryBackoff)
	headers := map[string]string{"X-Auth-Token": cfg.FDAPIKey}
	return &Fetcher{
		BaseURL: cfg.FDBaseURL,
		Client:  providers.NewClient(policy, cfg.FDDelay, headers, logger),
		Logger:  logger,
	}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "football-data"
}

// Competition holt die Stammdaten eines Wettbewerbs per FD-Code.
// Ein Fehler hier bricht den gesamten Lauf ab, da ohne Wettbewerb nichts
// weiter geladen werden kann.
func (f *Fetcher) Competition(ctx context.Context, code string) (*providers.CompetitionMeta, error) {
	url := fmt.Sprintf("%s/competitions/%s", f.BaseURL, code)
	body, status, err := f.Client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fehler beim abruf des wettbewerbs %s: %w", code, err)
	}
	if status == http.StatusNotFound {
		return nil, nil
	}

	var resp competitionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("fehler beim parsen der wettbewerbs-antwort: %w", err)
	}
	return &providers.CompetitionMeta{Code: resp.Code, Name: resp.Name, Emblem: resp.Emblem}, nil
}

// Teams holt alle Teams eines Wettbewerbs für eine Saison.
func (f *Fetcher) Teams(ctx context.Context, code string, seasonYear int) ([]providers.TeamEntry, error) {
	url := fmt.Sprintf("%s/competitions/%s/teams?season=%d", f.BaseURL, code, seasonYear)
	body, status, err := f.Client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fehler beim abruf der teamliste: %w", err)
	}
	if status == http.StatusNotFound {
		return nil, nil
	}

	var resp teamsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("fehler beim parsen der teamliste: %w", err)
	}

	teams := make([]providers.TeamEntry, 0, len(resp.Teams))
	for _, t := range resp.Teams {
		teams = append(teams, providers.TeamEntry{
			ID: t.ID, Name: t.Name, ShortName: t.ShortName, TLA: t.TLA, Crest: t.Crest,
		})
	}
	f.Logger.Info("Teamliste geladen", zap.String("competition", code), zap.Int("count", len(teams)))
	return teams, nil
}

// Matches holt alle Spiele eines Wettbewerbs für eine Saison.
func (f *Fetcher) Matches(ctx context.Context, code string, seasonYear int) ([]providers.MatchEntry, error) {
	url := fmt.Sprintf("%s/competitions/%s/matches?season=%d", f.BaseURL, code, seasonYear)
	return f.fetchMatches(ctx, url)
}

// MatchesBetween holt die Spiele eines Wettbewerbs in einem Datumsfenster
// (YYYY-MM-DD), typisch: der Vortag im Daily-Lauf.
func (f *Fetcher) MatchesBetween(ctx context.Context, code, dateFrom, dateTo string) ([]providers.MatchEntry, error) {
	url := fmt.Sprintf("%s/competitions/%s/matches?dateFrom=%s&dateTo=%s", f.BaseURL, code, dateFrom, dateTo)
	return f.fetchMatches(ctx, url)
}

func (f *Fetcher) fetchMatches(ctx context.Context, url string) ([]providers.MatchEntry, error) {
	body, status, err := f.Client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fehler beim abruf der spielliste: %w", err)
	}
	if status == http.StatusNotFound {
		return nil, nil
	}

	var resp matchesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("fehler beim parsen der spielliste: %w", err)
	}

	matches := make([]providers.MatchEntry, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, mapMatchEntry(m))
	}
	return matches, nil
}

// MatchDetail holt die Detailansicht eines Spiels: Aufstellungen, Bank,
// Tore mit Schütze und Vorlagengeber, Karten und Wechsel.
func (f *Fetcher) MatchDetail(ctx context.Context, matchID int64) (*providers.MatchDetail, error) {
	url := fmt.Sprintf("%s/matches/%d", f.BaseURL, matchID)
	body, status, err := f.Client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fehler beim abruf der spieldetails %d: %w", matchID, err)
	}
	if status == http.StatusNotFound {
		return nil, nil
	}

	var resp matchDetailResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("fehler beim parsen der spieldetails: %w", err)
	}

	detail := &providers.MatchDetail{
		MatchEntry: mapMatchEntry(matchEntry{
			ID:      resp.ID,
			UTCDate: resp.UTCDate,
			Status:  resp.Status,
			HomeTeam: teamRef{ID: resp.HomeTeam.ID, Name: resp.HomeTeam.Name},
			AwayTeam: teamRef{ID: resp.AwayTeam.ID, Name: resp.AwayTeam.Name},
			Score:    resp.Score,
		}),
		Home: mapTeamSheet(resp.HomeTeam),
		Away: mapTeamSheet(resp.AwayTeam),
	}

	for _, g := range resp.Goals {
		ev := providers.GoalEvent{Minute: g.Minute, TeamID: g.Team.ID, ScorerID: g.Scorer.ID}
		if g.Assist != nil {
			id := g.Assist.ID
			ev.AssistID = &id
		}
		detail.Goals = append(detail.Goals, ev)
	}
	for _, b := range resp.Bookings {
		detail.Bookings = append(detail.Bookings, providers.BookingEvent{
			Minute: b.Minute, TeamID: b.Team.ID, PlayerID: b.Player.ID, Card: b.Card,
		})
	}
	for _, s := range resp.Substitutions {
		detail.Substitutions = append(detail.Substitutions, providers.SubstitutionEvent{
			Minute: s.Minute, TeamID: s.Team.ID, PlayerOutID: s.PlayerOut.ID, PlayerInID: s.PlayerIn.ID,
		})
	}
	return detail, nil
}

func mapMatchEntry(m matchEntry) providers.MatchEntry {
	entry := providers.MatchEntry{
		ID:        m.ID,
		Status:    m.Status,
		HomeTeam:  providers.TeamRef{ID: m.HomeTeam.ID, Name: m.HomeTeam.Name},
		AwayTeam:  providers.TeamRef{ID: m.AwayTeam.ID, Name: m.AwayTeam.Name},
		HomeScore: m.Score.FullTime.Home,
		AwayScore: m.Score.FullTime.Away,
	}
	if t, err := time.Parse("2006-01-02T15:04:05Z", m.UTCDate); err == nil {
		entry.UTCDate = t
	}
	return entry
}

func mapTeamSheet(t lineupTeam) providers.TeamSheet {
	sheet := providers.TeamSheet{TeamID: t.ID}
	for _, p := range t.Lineup {
		sheet.Lineup = append(sheet.Lineup, providers.PersonRef{ID: p.ID, Name: p.Name})
	}
	for _, p := range t.Bench {
		sheet.Bench = append(sheet.Bench, providers.PersonRef{ID: p.ID, Name: p.Name})
	}
	return sheet
}
