package models

// Season repräsentiert eine Spielzeit als Dimensionstabelle.
// Name ist der kanonische Dedup-Schlüssel ("2023/2024"), NameTM die
// Kurzform im Transfermarkt-Format ("23/24").
type Season struct {
	ID uint `json:"id" gorm:"primaryKey"`

	Name      string `json:"name" gorm:"uniqueIndex;not null"`
	NameTM    string `json:"season_name_tm" gorm:"column:season_name_tm;uniqueIndex"`
	StartYear int    `json:"start_year"`
	EndYear   int    `json:"end_year"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Season) TableName() string {
	return "dim_seasons"
}
