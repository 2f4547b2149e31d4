package models

// Transfer hält eine Station der Transferhistorie eines Spielers.
// Dedup-Schlüssel: (player_id, date_recorded). Append-only; das Anlegen
// eines neuen Transfers setzt zusätzlich das aktuelle Team des Spielers
// auf das Zielteam.
type Transfer struct {
	ID uint `json:"id" gorm:"primaryKey"`

	PlayerID   uint  `json:"player_id" gorm:"index:idx_fact_transfers_dedup,unique"`
	TeamFromID *uint `json:"team_from_id,omitempty"`
	TeamToID   *uint `json:"team_to_id,omitempty"`
	SeasonID   *uint `json:"season_id,omitempty"`

	DateRecorded   string `json:"date_recorded" gorm:"size:10;index:idx_fact_transfers_dedup,unique"`
	MarketValueEUR int64  `json:"market_value_eur"`
	FeeEUR         int64  `json:"fee_eur"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Transfer) TableName() string {
	return "fact_transfers"
}
