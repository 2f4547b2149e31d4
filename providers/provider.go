package providers

import (
	"context"
	"time"
)

// Kanonische Zwischentypen, in die beide Provider ihre API-Antworten
// normalisieren. Die Services arbeiten ausschließlich gegen diese Typen
// und die beiden Interfaces darunter; in Tests werden die Interfaces
// durch Fakes ersetzt.

// CompetitionMeta sind die Stammdaten eines Wettbewerbs aus Football-Data.
type CompetitionMeta struct {
	Code   string
	Name   string
	Emblem string
}

// TeamEntry ist ein Team aus der Teamliste eines Wettbewerbs.
type TeamEntry struct {
	ID        int64
	Name      string
	ShortName string
	TLA       string
	Crest     string
}

// TeamRef referenziert ein Team innerhalb eines Spiels.
type TeamRef struct {
	ID   int64
	Name string
}

// MatchEntry ist ein Spiel aus der Spielliste eines Wettbewerbs.
type MatchEntry struct {
	ID        int64
	UTCDate   time.Time
	Status    string
	HomeTeam  TeamRef
	AwayTeam  TeamRef
	HomeScore *int
	AwayScore *int
}

// PersonRef referenziert einen Spieler in Aufstellung oder Bank.
type PersonRef struct {
	ID   int64
	Name string
}

// TeamSheet ist die Aufstellung eines Teams für ein Spiel.
type TeamSheet struct {
	TeamID int64
	Lineup []PersonRef
	Bench  []PersonRef
}

// GoalEvent ist ein Tor inklusive Vorlagengeber.
type GoalEvent struct {
	Minute   int
	TeamID   int64
	ScorerID int64
	AssistID *int64
}

// BookingEvent ist eine Verwarnung oder ein Platzverweis.
type BookingEvent struct {
	Minute   int
	TeamID   int64
	PlayerID int64
	Card     string // YELLOW, YELLOW_RED, RED
}

// SubstitutionEvent ist ein Spielerwechsel mit Minute.
type SubstitutionEvent struct {
	Minute      int
	TeamID      int64
	PlayerOutID int64
	PlayerInID  int64
}

// MatchDetail ist die vollständige Detailansicht eines Spiels.
type MatchDetail struct {
	MatchEntry
	Home          TeamSheet
	Away          TeamSheet
	Goals         []GoalEvent
	Bookings      []BookingEvent
	Substitutions []SubstitutionEvent
}

// ClubRef referenziert einen Verein in TM-Daten; ID 0 bedeutet unbekannt
// (z.B. "Vereinslos" in Transferhistorien).
type ClubRef struct {
	ID   int64
	Name string
}

// ClubSearchResult ist ein Treffer der TM-Vereinssuche.
type ClubSearchResult struct {
	ID          int64
	Name        string
	Country     string
	MarketValue int64
}

// PlayerSearchResult ist ein Treffer der TM-Spielersuche.
type PlayerSearchResult struct {
	ID            int64
	Name          string
	Position      string
	Age           *int
	Nationalities []string
	Club          ClubRef
}

// CompetitionSearchResult ist ein Treffer der TM-Wettbewerbssuche.
type CompetitionSearchResult struct {
	ID        string
	Name      string
	Country   string
	Continent string
}

// ClubProfile sind die Profildaten eines Vereins von Transfermarkt.
type ClubProfile struct {
	ID                    int64
	Name                  string
	FoundedOn             string // YYYY-MM-DD
	StadiumName           string
	CurrentTransferRecord int64
	CurrentMarketValue    int64
}

// PlayerProfile sind die Profildaten eines Spielers von Transfermarkt.
type PlayerProfile struct {
	ID           int64
	Name         string
	ShirtNumber  string
	PositionMain string
	DateOfBirth  string // YYYY-MM-DD
	Age          *int
}

// SquadPlayer ist ein Spieler aus dem Saison-Kader eines Vereins.
type SquadPlayer struct {
	ID   int64
	Name string
}

// MarketValueEntry ist ein Punkt der Marktwert-Historie eines Spielers.
type MarketValueEntry struct {
	Date        string // YYYY-MM-DD
	MarketValue int64
	Club        ClubRef
}

// TransferEntry ist eine Station der Transferhistorie eines Spielers.
type TransferEntry struct {
	Date        string // YYYY-MM-DD
	Season      string // TM-Kurzform, z.B. "23/24"
	ClubFrom    ClubRef
	ClubTo      ClubRef
	MarketValue int64
	Fee         int64
}

// StatLine ist eine Saison-Statistikzeile eines Spielers pro Wettbewerb.
type StatLine struct {
	SeasonID        string // TM-Kurzform, z.B. "23/24"
	CompetitionID   string
	CompetitionName string
	Appearances     int
	Goals           int
	Assists         int
	YellowCards     int
	RedCards        int
	MinutesPlayed   int
}

// MatchDataProvider ist die Abstraktion über die Football-Data API:
// Wettbewerbe, Teamlisten, Spiellisten und Spieldetails.
// Nicht gefundene Ressourcen kommen als (nil, nil) bzw. leere Slice zurück.
type MatchDataProvider interface {
	Competition(ctx context.Context, code string) (*CompetitionMeta, error)
	Teams(ctx context.Context, code string, seasonYear int) ([]TeamEntry, error)
	Matches(ctx context.Context, code string, seasonYear int) ([]MatchEntry, error)
	MatchesBetween(ctx context.Context, code, dateFrom, dateTo string) ([]MatchEntry, error)
	MatchDetail(ctx context.Context, matchID int64) (*MatchDetail, error)
}

// ProfileProvider ist die Abstraktion über die Transfermarkt API:
// Freitextsuche, Profile und Spieler-Historien.
type ProfileProvider interface {
	SearchClubs(ctx context.Context, name string) ([]ClubSearchResult, error)
	SearchPlayers(ctx context.Context, name string) ([]PlayerSearchResult, error)
	SearchCompetitions(ctx context.Context, name string) ([]CompetitionSearchResult, error)
	ClubProfile(ctx context.Context, id int64) (*ClubProfile, error)
	PlayerProfile(ctx context.Context, id int64) (*PlayerProfile, error)
	ClubPlayers(ctx context.Context, id int64, seasonYear int) ([]SquadPlayer, error)
	MarketValueHistory(ctx context.Context, id int64) ([]MarketValueEntry, error)
	Transfers(ctx context.Context, id int64) ([]TransferEntry, error)
	SeasonStats(ctx context.Context, id int64) ([]StatLine, error)
}
