package models

// PlayerMatchPerformance hält die Leistungsdaten eines Spielers in einer
// einzelnen Partie, abgeleitet aus Aufstellung, Toren, Karten und
// Wechseln. Es werden nur Zeilen mit Einsatzminuten oder mindestens
// einer Karte persistiert.
type PlayerMatchPerformance struct {
	ID uint `json:"id" gorm:"primaryKey"`

	PlayerID uint  `json:"player_id" gorm:"index:idx_fact_performances_dedup,unique"`
	MatchID  uint  `json:"match_id" gorm:"index:idx_fact_performances_dedup,unique"`
	TeamID   *uint `json:"team_id,omitempty"`

	MinutesPlayed int `json:"minutes_played"`
	Goals         int `json:"goals"`
	Assists       int `json:"assists"`
	YellowCards   int `json:"yellow_cards"`
	RedCards      int `json:"red_cards"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (PlayerMatchPerformance) TableName() string {
	return "fact_player_match_performances"
}
