package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"football_dwh"`

	HTTPPort string `envconfig:"HTTP_PORT" default:"4242"`

	// Football-Data API (Wettbewerbe, Teams, Spiele)
	FDBaseURL string        `envconfig:"FD_BASE_URL" default:"https://api.football-data.org/v4"`
	FDAPIKey  string        `envconfig:"FD_API_KEY" required:"true"`
	FDDelay   time.Duration `envconfig:"FD_CALL_DELAY" default:"6s"`

	// Transfermarkt API (Profile, Marktwerte, Transfers, Statistiken)
	TMBaseURL string        `envconfig:"TM_API_URL" required:"true"`
	TMDelay   time.Duration `envconfig:"TM_CALL_DELAY" default:"1500ms"`

	RetryAttempts int           `envconfig:"RETRY_ATTEMPTS" default:"3"`
	RetryBackoff  time.Duration `envconfig:"RETRY_BACKOFF" default:"5s"`

	CronSchedule string `envconfig:"CRON_SCHEDULE" default:"5 0 * * *"`

	// Standard-Parameter für den Season-Load
	DefaultCompetition string `envconfig:"DEFAULT_COMPETITION" default:"PL"`
	DefaultSeasonYear  int    `envconfig:"DEFAULT_SEASON_YEAR" default:"2024"`

	// S3-Archiv für rohe API-Antworten (Audit)
	ArchiveEnabled  bool   `envconfig:"ARCHIVE_ENABLED" default:"false"`
	ArchiveS3Key    string `envconfig:"ARCHIVE_S3_KEY"`
	ArchiveS3Secret string `envconfig:"ARCHIVE_S3_SECRET"`
	ArchiveS3URL    string `envconfig:"ARCHIVE_S3_URL"`
	ArchiveS3Region string `envconfig:"ARCHIVE_S3_REGION"`
	ArchiveS3Bucket string `envconfig:"ARCHIVE_S3_BUCKET"`

	APISecretKey string `envconfig:"API_SECRET_KEY"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
