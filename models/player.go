package models

import "time"

// Player repräsentiert einen Spieler als Dimensionstabelle.
// Eindeutiger Schlüssel ist die TM-ID, sofern vorhanden (der reichere
// Identifier-Raum, über den alle Anreicherungen laufen); die FD-Personen-ID
// ist ein sekundäres, ebenfalls eindeutiges Attribut für die
// Aufstellungs-Zuordnung.
type Player struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TMID *int64 `json:"tm_id,omitempty" gorm:"column:tm_id;uniqueIndex"`
	FDID *int64 `json:"fd_id,omitempty" gorm:"column:fd_id;uniqueIndex"`

	Name         string     `json:"name"`
	Position     string     `json:"position,omitempty"`
	PositionName string     `json:"position_name,omitempty"`
	Nationality  string     `json:"nationality,omitempty"`
	Age          *int       `json:"age,omitempty"`
	DateOfBirth  *time.Time `json:"date_of_birth,omitempty"`
	ShirtNumber  string     `json:"shirt_number,omitempty"`

	CurrentTeamID *uint `json:"current_team_id,omitempty"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Player) TableName() string {
	return "dim_players"
}
