package models

import "time"

// Team repräsentiert einen Verein als Dimensionstabelle.
// Pro (Provider, externe ID) existiert höchstens eine Zeile; ein über
// Transfermarkt entdecktes Team, das später einem Football-Data-Team
// zugeordnet wird, muss in dieselbe Zeile gemergt werden.
type Team struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FDID *int64 `json:"fd_id,omitempty" gorm:"column:fd_id;uniqueIndex"`
	TMID *int64 `json:"tm_id,omitempty" gorm:"column:tm_id;uniqueIndex"`

	Name      string     `json:"name"`
	ShortName string     `json:"short_name,omitempty"`
	TLA       string     `json:"tla,omitempty" gorm:"size:3"` // z.B. MUN, CHE
	CrestURL  string     `json:"crest_url,omitempty"`
	Founded   *time.Time `json:"founded,omitempty"`
	Stadium   string     `json:"stadium,omitempty"`

	CurrentTransferRecord int64 `json:"current_transfer_record"`
	CurrentMarketValue    int64 `json:"current_market_value"`

	// Ein Team kann existieren, bevor seine Liga bekannt ist.
	CompetitionID *uint `json:"competition_id,omitempty"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Team) TableName() string {
	return "dim_teams"
}
