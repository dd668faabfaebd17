package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds process configuration read from the environment.
type Config struct {
	Secret           string
	DatabaseDSN      string
	HTTPPort         string
	SettingsFile     string
	TranslationsFile string
	InventoryCSV     string
	ExportDir        string
	LogFormat        string
	AppName          string
	BackupS3         S3Config
}

// S3Config describes the optional off-site mirror for backups. An empty
// bucket disables it. Without explicit keys the default AWS credential
// chain is used.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

func (c S3Config) Enabled() bool { return c.Bucket != "" }

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	port := getEnv("HTTP_PORT", "8080")
	if _, err := strconv.Atoi(port); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8080", port)
		port = "8080"
	}

	return Config{
		Secret:           getEnv("SECRET", "dev_secret"),
		DatabaseDSN:      getEnv("DATABASE_DSN", "vet_clinic.db"),
		HTTPPort:         port,
		SettingsFile:     getEnv("SETTINGS_FILE", "settings.env"),
		TranslationsFile: os.Getenv("TRANSLATIONS_FILE"),
		InventoryCSV:     os.Getenv("INVENTORY_CSV"),
		ExportDir:        getEnv("EXPORT_DIR", "exports"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
		AppName:          getEnv("APP_NAME", "vetclinic"),
		BackupS3: S3Config{
			Bucket:    os.Getenv("BACKUP_S3_BUCKET"),
			Region:    getEnv("BACKUP_S3_REGION", "us-east-1"),
			Endpoint:  os.Getenv("BACKUP_S3_ENDPOINT"),
			PathStyle: strings.EqualFold(os.Getenv("BACKUP_S3_PATH_STYLE"), "true"),

			AccessKeyID:     os.Getenv("BACKUP_S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("BACKUP_S3_SECRET_ACCESS_KEY"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
