package footballdata

// Wire-Typen der Football-Data v4 API. Nur die Felder, die der ETL
// tatsächlich liest.

type competitionResponse struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Emblem string `json:"emblem"`
}

type teamEntry struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	TLA       string `json:"tla"`
	Crest     string `json:"crest"`
}

type teamsResponse struct {
	Teams []teamEntry `json:"teams"`
}

type teamRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type score struct {
	FullTime struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"fullTime"`
}

type matchEntry struct {
	ID       int64   `json:"id"`
	UTCDate  string  `json:"utcDate"`
	Status   string  `json:"status"`
	HomeTeam teamRef `json:"homeTeam"`
	AwayTeam teamRef `json:"awayTeam"`
	Score    score   `json:"score"`
}

type matchesResponse struct {
	Matches []matchEntry `json:"matches"`
}

type personRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type lineupTeam struct {
	ID     int64       `json:"id"`
	Name   string      `json:"name"`
	Lineup []personRef `json:"lineup"`
	Bench  []personRef `json:"bench"`
}

type goalEvent struct {
	Minute int     `json:"minute"`
	Team   teamRef `json:"team"`
	Scorer struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"scorer"`
	Assist *struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"assist"`
}

type bookingEvent struct {
	Minute int     `json:"minute"`
	Team   teamRef `json:"team"`
	Player struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"player"`
	Card string `json:"card"`
}

type substitutionEvent struct {
	Minute int     `json:"minute"`
	Team   teamRef `json:"team"`
	PlayerOut struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"playerOut"`
	PlayerIn struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"playerIn"`
}

type matchDetailResponse struct {
	ID            int64               `json:"id"`
	UTCDate       string              `json:"utcDate"`
	Status        string              `json:"status"`
	HomeTeam      lineupTeam          `json:"homeTeam"`
	AwayTeam      lineupTeam          `json:"awayTeam"`
	Score         score               `json:"score"`
	Goals         []goalEvent         `json:"goals"`
	Bookings      []bookingEvent      `json:"bookings"`
	Substitutions []substitutionEvent `json:"substitutions"`
}
