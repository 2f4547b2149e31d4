package models

import "time"

// Match speichert das Endergebnis einer Partie als Faktentabelle.
// Dedup-Schlüssel ist die FD-Match-ID. Eine Partie mit Status FINISHED
// ist unveränderlich; nicht beendete Partien dürfen beim erneuten
// Abruf überschrieben werden.
type Match struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FDMatchID int64     `json:"fd_match_id" gorm:"column:fd_match_id;uniqueIndex;not null"`
	Date      time.Time `json:"date"`

	SeasonID      uint `json:"season_id"`
	CompetitionID uint `json:"competition_id"`

	HomeTeamID uint `json:"home_team_id"`
	AwayTeamID uint `json:"away_team_id"`

	HomeScore *int `json:"home_score,omitempty"`
	AwayScore *int `json:"away_score,omitempty"`

	// 'FINISHED', 'SCHEDULED'; andere Werte werden unverändert durchgereicht.
	Status string `json:"status" gorm:"index"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Match) TableName() string {
	return "fact_matches"
}
