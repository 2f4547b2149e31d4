package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"football-dwh/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		startYear int
		endYear   int
		ok        bool
	}{
		{"kurzform aktuell", "22/23", 2022, 2023, true},
		{"kurzform jahrhundertwechsel", "99/00", 1999, 2000, true},
		{"kurzform alt", "85/86", 1985, 1986, true},
		{"schwelle untere kante", "50/51", 1950, 1951, true},
		{"schwelle obere kante", "49/50", 2049, 1950, true},
		{"nacktes jahr", "2022", 2022, 2023, true},
		{"whitespace", " 22/23 ", 2022, 2023, true},
		{"leer", "", 0, 0, false},
		{"unsinn", "Sommer", 0, 0, false},
		{"dreistellig", "202/3", 0, 0, false},
		{"einstellig", "2/3", 0, 0, false},
		{"negatives jahr", "-123", 0, 0, false},
		{"jahr mit vorzeichen", "+123", 0, 0, false},
		{"dreistelliges jahr mit führender null", "0123", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, ok := Normalize(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.startYear, start)
				assert.Equal(t, tt.endYear, end)
			}
		})
	}
}

func TestCanonicalAndTMName(t *testing.T) {
	assert.Equal(t, "2022/2023", CanonicalName(2022, 2023))
	assert.Equal(t, "22/23", TMName(2022, 2023))
	assert.Equal(t, "99/00", TMName(1999, 2000))
}

func TestCurrentTMName(t *testing.T) {
	assert.Equal(t, "24/25", CurrentTMName(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "25/26", CurrentTMName(time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "25/26", CurrentTMName(time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)))
}

func TestGetOrCreateNormalizesAllForms(t *testing.T) {
	db := newTestDB(t)
	svc := NewSeasonService(db, zap.NewNop())

	first, err := svc.GetOrCreate("22/23")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "2022/2023", first.Name)
	assert.Equal(t, "22/23", first.NameTM)

	// Das nackte Jahr und die Kurzform landen auf derselben Zeile.
	second, err := svc.GetOrCreate("2022")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	db.Model(&models.Season{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestGetOrCreateMalformed(t *testing.T) {
	db := newTestDB(t)
	svc := NewSeasonService(db, zap.NewNop())

	season, err := svc.GetOrCreate("Karriereende")
	require.NoError(t, err)
	assert.Nil(t, season, "nicht normalisierbare bezeichner liefern nil ohne fehler")

	var count int64
	db.Model(&models.Season{}).Count(&count)
	assert.Equal(t, int64(0), count)
}
