package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"football-dwh/models"
)

// SeasonService normalisiert Provider-Saisonbezeichner auf den
// kanonischen Namen "JJJJ/JJJJ" und legt Saisonzeilen idempotent an.
// Transfermarkt liefert "22/23", Football-Data nur das Startjahr, und
// Transferlisten gelegentlich ein nacktes Jahr "2022" — alle drei
// Formen landen auf derselben Zeile.
type SeasonService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

func NewSeasonService(db *gorm.DB, logger *zap.Logger) *SeasonService {
	return &SeasonService{DB: db, Logger: logger}
}

// Normalize zerlegt einen rohen Saisonbezeichner in Start- und
// Endjahr. Akzeptiert werden die Kurzform "XX/YY" (zweistellige Jahre,
// ab 50 als 19xx gelesen, darunter als 20xx) und ein vierstelliges
// Einzeljahr, das als Saisonstart gilt. Alles andere liefert ok=false.
func Normalize(raw string) (startYear, endYear int, ok bool) {
	raw = strings.TrimSpace(raw)
	if parts := strings.Split(raw, "/"); len(parts) == 2 {
		start, err1 := strconv.Atoi(parts[0])
		end, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil || len(parts[0]) != 2 || len(parts[1]) != 2 {
			return 0, 0, false
		}
		return expandYear(start), expandYear(end), true
	}
	if len(raw) == 4 {
		year, err := strconv.Atoi(raw)
		if err != nil || year < 1000 {
			return 0, 0, false
		}
		return year, year + 1, true
	}
	return 0, 0, false
}

func expandYear(short int) int {
	if short >= 50 {
		return 1900 + short
	}
	return 2000 + short
}

// CanonicalName bildet den eindeutigen Saisonnamen aus den vollen
// Jahreszahlen, z.B. "2022/2023".
func CanonicalName(startYear, endYear int) string {
	return fmt.Sprintf("%d/%d", startYear, endYear)
}

// TMName bildet die zweistellige Transfermarkt-Kurzform zur Saison,
// z.B. "22/23".
func TMName(startYear, endYear int) string {
	return fmt.Sprintf("%02d/%02d", startYear%100, endYear%100)
}

// CurrentTMName liefert die Kurzform der laufenden Saison. Der
// Saisonwechsel ist auf den 1. Juli gelegt.
func CurrentTMName(now time.Time) string {
	start := now.Year()
	if now.Month() < time.July {
		start--
	}
	return TMName(start, start+1)
}

// GetOrCreate löst einen rohen Saisonbezeichner auf die Saisonzeile
// auf und legt sie bei Bedarf an. Nicht normalisierbare Bezeichner
// werden geloggt und liefern nil ohne Fehler, damit der aufrufende
// Lauf den Datensatz überspringen kann.
func (s *SeasonService) GetOrCreate(raw string) (*models.Season, error) {
	startYear, endYear, ok := Normalize(raw)
	if !ok {
		s.Logger.Warn("saisonbezeichner nicht normalisierbar, datensatz wird übersprungen", zap.String("raw", raw))
		return nil, nil
	}
	return s.GetOrCreateYears(startYear, endYear)
}

// GetOrCreateYears legt die Saison zu einem Jahrespaar idempotent an.
// Der kanonische Name ist der Lookup-Schlüssel; ein paralleler Insert
// wird über den Unique-Index abgefangen und nachgeschlagen.
func (s *SeasonService) GetOrCreateYears(startYear, endYear int) (*models.Season, error) {
	name := CanonicalName(startYear, endYear)

	var season models.Season
	err := s.DB.Where("name = ?", name).First(&season).Error
	if err == nil {
		return &season, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("fehler beim nachschlagen der saison %s: %w", name, err)
	}

	season = models.Season{
		Name:      name,
		NameTM:    TMName(startYear, endYear),
		StartYear: startYear,
		EndYear:   endYear,
	}
	if err := s.DB.Create(&season).Error; err != nil {
		var existing models.Season
		if qerr := s.DB.Where("name = ?", name).First(&existing).Error; qerr == nil {
			return &existing, nil
		}
		return nil, fmt.Errorf("fehler beim anlegen der saison %s: %w", name, err)
	}
	s.Logger.Info("saison angelegt", zap.String("name", name))
	entitiesCreated.WithLabelValues("season").Inc()
	return &season, nil
}
