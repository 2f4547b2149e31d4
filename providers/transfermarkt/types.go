package transfermarkt

import (
	"bytes"
	"strconv"
	"strings"
)

// Wire-Typen der Transfermarkt API. Die API liefert IDs und Zahlwerte
// teils als String, teils als Zahl; flexID und flexInt normalisieren
// beide Formen.

// flexID ist eine externe ID, die als String oder Zahl ankommen kann.
type flexID int64

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexID(v)
	return nil
}

// flexInt ist ein Zahlwert, der als String oder Zahl ankommen kann;
// unparsebare Werte werden als 0 gelesen statt den Batch zu brechen.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" || s == "-" {
		*f = 0
		return nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = flexInt(v)
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*f = flexInt(int64(v))
	}
	return nil
}

type clubRef struct {
	ID   flexID `json:"id"`
	Name string `json:"name"`
}

type clubSearchResult struct {
	ID          flexID  `json:"id"`
	Name        string  `json:"name"`
	Country     string  `json:"country"`
	MarketValue flexInt `json:"marketValue"`
}

type clubSearchResponse struct {
	Results []clubSearchResult `json:"results"`
}

type playerSearchResult struct {
	ID            flexID   `json:"id"`
	Name          string   `json:"name"`
	Position      string   `json:"position"`
	Age           *int     `json:"age"`
	Nationalities []string `json:"nationalities"`
	Club          *clubRef `json:"club"`
}

type playerSearchResponse struct {
	Results []playerSearchResult `json:"results"`
}

type competitionSearchResult struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Country   string `json:"country"`
	Continent string `json:"continent"`
}

type competitionSearchResponse struct {
	Results []competitionSearchResult `json:"results"`
}

type clubProfileResponse struct {
	ID                    flexID  `json:"id"`
	Name                  string  `json:"name"`
	FoundedOn             string  `json:"foundedOn"`
	StadiumName           string  `json:"stadiumName"`
	CurrentTransferRecord flexInt `json:"currentTransferRecord"`
	CurrentMarketValue    flexInt `json:"currentMarketValue"`
}

type playerProfileResponse struct {
	ID          flexID `json:"id"`
	Name        string `json:"name"`
	ShirtNumber string `json:"shirtNumber"`
	DateOfBirth string `json:"dateOfBirth"`
	Age         *int   `json:"age"`
	Position    struct {
		Main string `json:"main"`
	} `json:"position"`
}

type squadPlayer struct {
	ID   flexID `json:"id"`
	Name string `json:"name"`
}

type clubPlayersResponse struct {
	Players []squadPlayer `json:"players"`
}

type marketValueEntry struct {
	Date        string  `json:"date"`
	MarketValue flexInt `json:"marketValue"`
	ClubID      flexID  `json:"clubId"`
	ClubName    string  `json:"clubName"`
}

type marketValueResponse struct {
	MarketValueHistory []marketValueEntry `json:"marketValueHistory"`
}

type transferEntry struct {
	Date        string   `json:"date"`
	Season      string   `json:"season"`
	ClubFrom    *clubRef `json:"clubFrom"`
	ClubTo      *clubRef `json:"clubTo"`
	MarketValue flexInt  `json:"marketValue"`
	Fee         flexInt  `json:"fee"`
}

type transfersResponse struct {
	Transfers []transferEntry `json:"transfers"`
}

type statLine struct {
	SeasonID        string  `json:"seasonId"`
	CompetitionID   string  `json:"competitionId"`
	CompetitionName string  `json:"competitionName"`
	Appearances     flexInt `json:"appearances"`
	Goals           flexInt `json:"goals"`
	Assists         flexInt `json:"assists"`
	YellowCards     flexInt `json:"yellowCards"`
	RedCards        flexInt `json:"redCards"`
	MinutesPlayed   flexInt `json:"minutesPlayed"`
}

type statsResponse struct {
	Stats []statLine `json:"stats"`
}
