package models

// Competition repräsentiert einen Wettbewerb (Liga oder Pokal).
// FDID und TMID sind die externen IDs der beiden Provider; beide sind
// optional und eindeutig, sofern gesetzt. Ein Wettbewerb kann von jedem
// der beiden Provider zuerst angelegt werden.
type Competition struct {
	ID uint `json:"id" gorm:"primaryKey"`

	FDID *string `json:"fd_id,omitempty" gorm:"column:fd_id;uniqueIndex"`
	TMID *string `json:"tm_id,omitempty" gorm:"column:tm_id;uniqueIndex"`

	Name      string `json:"name"`
	EmblemURL string `json:"emblem_url,omitempty"`
	Country   string `json:"country,omitempty"`
	Continent string `json:"continent,omitempty"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Competition) TableName() string {
	return "dim_competitions"
}
