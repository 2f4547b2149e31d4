package services

import (
	"context"

	"go.uber.org/zap"

	"football-dwh/providers"
)

// Matcher kapselt die Namenssuche bei Transfermarkt, mit der
// Football-Data-Entitäten ihre Transfermarkt-Gegenstücke finden.
// Alle Methoden liefern nil ohne Fehler, wenn kein Kandidat die
// Akzeptanzregel erfüllt.
type Matcher struct {
	TM     providers.ProfileProvider
	Logger *zap.Logger
}

func NewMatcher(tm providers.ProfileProvider, logger *zap.Logger) *Matcher {
	return &Matcher{TM: tm, Logger: logger}
}

// FindClub sucht zuerst mit dem Kurznamen, weil der die Treffsicherheit
// bei Vereinen erfahrungsgemäß erhöht ("Gladbach" statt "Borussia
// Mönchengladbach"). Liefert die Kurzform nichts, folgt der volle Name.
// Akzeptiert wird jeweils der erste Treffer.
func (m *Matcher) FindClub(ctx context.Context, name, shortName string) (*providers.ClubSearchResult, error) {
	for _, query := range []string{shortName, name} {
		if query == "" {
			continue
		}
		results, err := m.TM.SearchClubs(ctx, query)
		if err != nil {
			return nil, err
		}
		if len(results) > 0 {
			m.Logger.Debug("verein via suche aufgelöst",
				zap.String("query", query),
				zap.Int64("tm_id", results[0].ID),
				zap.String("treffer", results[0].Name))
			return &results[0], nil
		}
	}
	m.Logger.Debug("kein verein zur suche gefunden", zap.String("name", name), zap.String("short_name", shortName))
	return nil, nil
}

// FindPlayer sucht einen Spieler über den Namen. Ist wantID gesetzt,
// zählt nur ein Treffer mit exakt dieser Transfermarkt-ID. Ist ein
// Alter bekannt, wird der erste Treffer akzeptiert, dessen Alter um
// höchstens ein Jahr abweicht; Treffer ohne Altersangabe fallen durch.
func (m *Matcher) FindPlayer(ctx context.Context, name string, wantID int64, age *int) (*providers.PlayerSearchResult, error) {
	results, err := m.TM.SearchPlayers(ctx, name)
	if err != nil {
		return nil, err
	}
	for i := range results {
		r := &results[i]
		if wantID != 0 {
			if r.ID == wantID {
				return r, nil
			}
			continue
		}
		if age != nil {
			if r.Age == nil {
				continue
			}
			diff := *r.Age - *age
			if diff < -1 || diff > 1 {
				continue
			}
			return r, nil
		}
		return r, nil
	}
	m.Logger.Debug("kein spieler zur suche gefunden", zap.String("name", name), zap.Int64("want_id", wantID))
	return nil, nil
}

// FindCompetition liefert den ersten Suchtreffer für einen
// Wettbewerbsnamen, oder nil.
func (m *Matcher) FindCompetition(ctx context.Context, name string) (*providers.CompetitionSearchResult, error) {
	results, err := m.TM.SearchCompetitions(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		m.Logger.Debug("kein wettbewerb zur suche gefunden", zap.String("name", name))
		return nil, nil
	}
	return &results[0], nil
}
