package transfermarkt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"football-dwh/config"
	"football-dwh/providers"
)

// Fetcher kapselt die Interaktion mit der Transfermarkt API: Freitextsuche
// für Vereine/Spieler/Wettbewerbe, Profile und die Spieler-Historien
// (Marktwerte, Transfers, Saison-Statistiken). Die API dokumentiert kein
// Rate Limit; die feste Call-Pause des Clients hält den Abstand ein.
type Fetcher struct {
	BaseURL string
	Client  *providers.Client
	Logger  *zap.Logger
}

// NewFetcher erstellt eine neue Instanz des Transfermarkt-Fetchers.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	policy := providers.DefaultRetryPolicy(cfg.RetryAttempts, cfg.RetryBackoff)
	return &Fetcher{
		BaseURL: cfg.TMBaseURL,
		Client:  providers.NewClient(policy, cfg.TMDelay, nil, logger),
		Logger:  logger,
	}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "transfermarkt"
}

// get holt und dekodiert eine Ressource; bei 404 bleibt out unverändert
// und ok ist false (kein Fehler, nur keine Daten).
func (f *Fetcher) get(ctx context.Context, url string, out interface{}) (bool, error) {
	body, status, err := f.Client.Get(ctx, url)
	if err != nil {
		return false, err
	}
	if status == http.StatusNotFound {
		return false, nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("fehler beim parsen der tm-antwort: %w", err)
	}
	return true, nil
}

// SearchClubs führt die Vereinssuche mit exaktem Namen aus.
func (f *Fetcher) SearchClubs(ctx context.Context, name string) ([]providers.ClubSearchResult, error) {
	var resp clubSearchResponse
	ok, err := f.get(ctx, fmt.Sprintf("%s/clubs/search/%s", f.BaseURL, url.PathEscape(name)), &resp)
	if err != nil || !ok {
		return nil, err
	}

	results := make([]providers.ClubSearchResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, providers.ClubSearchResult{
			ID: int64(r.ID), Name: r.Name, Country: r.Country, MarketValue: int64(r.MarketValue),
		})
	}
	return results, nil
}

// SearchPlayers führt die Spielersuche mit exaktem Namen aus.
func (f *Fetcher) SearchPlayers(ctx context.Context, name string) ([]providers.PlayerSearchResult, error) {
	var resp playerSearchResponse
	ok, err := f.get(ctx, fmt.Sprintf("%s/players/search/%s", f.BaseURL, url.PathEscape(name)), &resp)
	if err != nil || !ok {
		return nil, err
	}

	results := make([]providers.PlayerSearchResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		res := providers.PlayerSearchResult{
			ID: int64(r.ID), Name: r.Name, Position: r.Position,
			Age: r.Age, Nationalities: r.Nationalities,
		}
		if r.Club != nil {
			res.Club = providers.ClubRef{ID: int64(r.Club.ID), Name: r.Club.Name}
		}
		results = append(results, res)
	}
	return results, nil
}

// SearchCompetitions führt die Wettbewerbssuche mit exaktem Namen aus.
func (f *Fetcher) SearchCompetitions(ctx context.Context, name string) ([]providers.CompetitionSearchResult, error) {
	var resp competitionSearchResponse
	ok, err := f.get(ctx, fmt.Sprintf("%s/competitions/search/%s", f.BaseURL, url.PathEscape(name)), &resp)
	if err != nil || !ok {
		return nil, err
	}

	results := make([]providers.CompetitionSearchResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, providers.CompetitionSearchResult{
			ID: r.ID, Name: r.Name, Country: r.Country, Continent: r.Continent,
		})
	}
	return results, nil
}

// ClubProfile holt das Vereinsprofil (Gründungsdatum, Stadion, Finanzen).
func (f *Fetcher) ClubProfile(ctx context.Context, id int64) (*providers.ClubProfile, error) {
	var resp clubProfileResponse
	ok, err := f.get(ctx, fmt.Sprintf("%s/clubs/%d/profile", f.BaseURL, id), &resp)
	if err != nil || !ok {
		return nil, err
	}
	return &providers.ClubProfile{
		ID:                    int64(resp.ID),
		Name:                  resp.Name,
		FoundedOn:             resp.FoundedOn,
		StadiumName:           resp.StadiumName,
		CurrentTransferRecord: int64(resp.CurrentTransferRecord),
		CurrentMarketValue:    int64(resp.CurrentMarketValue),
	}, nil
}

// PlayerProfile holt das Spielerprofil (Position, Rückennummer, Geburtsdatum).
func (f *Fetcher) PlayerProfile(ctx context.Context, id int64) (*providers.PlayerProfile, error) {
	var resp playerProfileResponse
	ok, err := f.get(ctx, fmt.Sprintf("%s/players/%d/profile", f.BaseURL, id), &resp)
	if err != nil || !ok {
		return nil, err
	}
	return &providers.PlayerProfile{
		ID:           int64(resp.ID),
		Name:         resp.Name,
		ShirtNumber:  resp.ShirtNumber,
		PositionMain: resp.Position.Main,
		DateOfBirth:  resp.DateOfBirth,
		Age:          resp.Age,
	}, nil
}

// ClubPlayers holt den Saison-Kader eines Vereins.
func (f *Fetcher) ClubPlayers(ctx context.Context, id int64, seasonYear int) ([]providers.SquadPlayer, error) {
	var resp clubPlayersResponse
	ok, err := f.get(ctx, fmt.Sprintf("%s/clubs/%d/players?season_id=%d", f.BaseURL, id, seasonYear), &resp)
	if err != nil || !ok {
		return nil, err
	}

	players := make([]providers.SquadPlayer, 0, len(resp.Players))
	for _, p := range resp.Players {
		players = append(players, providers.SquadPlayer{ID: int64(p.ID), Name: p.Name})
	}
	return players, nil
}

// MarketValueHistory holt die Marktwert-Historie eines Spielers.
func (f *Fetcher) MarketValueHistory(ctx context.Context, id int64) ([]providers.MarketValueEntry, error) {
	var resp marketValueResponse
	ok, err := f.get(ctx, fmt.Sprintf("%s/players/%d/market_value", f.BaseURL, id), &resp)
	if err != nil || !ok {
		return nil, err
	}

	entries := make([]providers.MarketValueEntry, 0, len(resp.MarketValueHistory))
	for _, e := range resp.MarketValueHistory {
		entries = append(entries, providers.MarketValueEntry{
			Date:        e.Date,
			MarketValue: int64(e.MarketValue),
			Club:        providers.ClubRef{ID: int64(e.ClubID), Name: e.ClubName},
		})
	}
	return entries, nil
}

// Transfers holt die Transferhistorie eines Spielers.
func (f *Fetcher) Transfers(ctx context.Context, id int64) ([]providers.TransferEntry, error) {
	var resp transfersResponse
	ok, err := f.get(ctx, fmt.Sprintf("%s/players/%d/transfers", f.BaseURL, id), &resp)
	if err != nil || !ok {
		return nil, err
	}

	entries := make([]providers.TransferEntry, 0, len(resp.Transfers))
	for _, e := range resp.Transfers {
		entry := providers.TransferEntry{
			Date:        e.Date,
			Season:      e.Season,
			MarketValue: int64(e.MarketValue),
			Fee:         int64(e.Fee),
		}
		if e.ClubFrom != nil {
			entry.ClubFrom = providers.ClubRef{ID: int64(e.ClubFrom.ID), Name: e.ClubFrom.Name}
		}
		if e.ClubTo != nil {
			entry.ClubTo = providers.ClubRef{ID: int64(e.ClubTo.ID), Name: e.ClubTo.Name}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// SeasonStats holt die Statistikzeilen eines Spielers pro Wettbewerb und Saison.
func (f *Fetcher) SeasonStats(ctx context.Context, id int64) ([]providers.StatLine, error) {
	var resp statsResponse
	ok, err := f.get(ctx, fmt.Sprintf("%s/players/%d/stats", f.BaseURL, id), &resp)
	if err != nil || !ok {
		return nil, err
	}

	lines := make([]providers.StatLine, 0, len(resp.Stats))
	for _, s := range resp.Stats {
		lines = append(lines, providers.StatLine{
			SeasonID:        s.SeasonID,
			CompetitionID:   s.CompetitionID,
			CompetitionName: s.CompetitionName,
			Appearances:     int(s.Appearances),
			Goals:           int(s.Goals),
			Assists:         int(s.Assists),
			YellowCards:     int(s.YellowCards),
			RedCards:        int(s.RedCards),
			MinutesPlayed:   int(s.MinutesPlayed),
		})
	}
	return lines, nil
}
