package models

// MarketValue hält eine Marktwert-Beobachtung eines Spielers zu einem
// Zeitpunkt. Dedup-Schlüssel: (player_id, date_recorded). Append-only.
type MarketValue struct {
	ID uint `json:"id" gorm:"primaryKey"`

	PlayerID uint  `json:"player_id" gorm:"index:idx_fact_market_values_dedup,unique"`
	TeamID   *uint `json:"team_id,omitempty"`

	// Datum wie vom Provider geliefert (YYYY-MM-DD) — Teil des Dedup-Schlüssels.
	DateRecorded   string `json:"date_recorded" gorm:"size:10;index:idx_fact_market_values_dedup,unique"`
	MarketValueEUR int64  `json:"market_value_eur"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (MarketValue) TableName() string {
	return "fact_market_values"
}
