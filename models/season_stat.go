package models

// PlayerSeasonStat hält die aufsummierten Saison-Statistiken eines Spielers
// in einem Wettbewerb. Dedup-Schlüssel: (player_id, season_id,
// competition_id). Kein Append-only-Fakt: existierende Zeilen werden
// überschrieben, sobald sich mindestens ein Zahlenwert geändert hat.
type PlayerSeasonStat struct {
	ID uint `json:"id" gorm:"primaryKey"`

	PlayerID      uint  `json:"player_id" gorm:"index:idx_fact_season_stats_dedup,unique"`
	TeamID        *uint `json:"team_id,omitempty"`
	SeasonID      uint  `json:"season_id" gorm:"index:idx_fact_season_stats_dedup,unique"`
	CompetitionID uint  `json:"competition_id" gorm:"index:idx_fact_season_stats_dedup,unique"`

	Appearances   int `json:"appearances"`
	Goals         int `json:"goals"`
	Assists       int `json:"assists"`
	YellowCards   int `json:"yellow_cards"`
	RedCards      int `json:"red_cards"`
	MinutesPlayed int `json:"minutes_played"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (PlayerSeasonStat) TableName() string {
	return "fact_player_season_stats"
}
