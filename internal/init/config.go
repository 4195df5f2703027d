package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultStatusURL = "https://check-status-final-88358153370.asia-southeast1.run.app"

type Config struct {
	// App mode & server
	Mode        string
	ServerAddr  string
	TLSCertFile string
	TLSKeyFile  string
	GinMode     string

	// Database
	DBDriver       string
	DBDSN          string
	DBMaxOpenConns int

	// Sessions & passwords
	SessionSecret string
	SessionCookie string
	SessionTTL    time.Duration
	BcryptCost    int

	// Media
	MediaBackend string
	UploadDir    string
	GCSBucket    string
	MediaBaseURL string
	MaxUploadMB  int64

	StatusURL string

	// Kafka
	KafkaBroker    string
	KafkaTopic     string
	KafkaPartition int
	KafkaWriteTO   time.Duration
}

// Init loads the config using Viper and returns it
func Init() *Config {
	v := viper.New()

	v.SetDefault("MODE", "server")
	v.SetDefault("SERVER_ADDR", ":8080")
	v.SetDefault("GIN_MODE", "release")

	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "database.db?_foreign_keys=on&_busy_timeout=5000")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)

	v.SetDefault("SESSION_SECRET", "super_secret_key")
	v.SetDefault("SESSION_COOKIE", "session")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("BCRYPT_COST", 10)

	v.SetDefault("MEDIA_BACKEND", "disk")
	v.SetDefault("UPLOAD_DIR", "static/uploads")
	v.SetDefault("MAX_UPLOAD_MB", 64)

	v.SetDefault("STATUS_URL", defaultStatusURL)

	// Empty broker disables activity events
	v.SetDefault("KAFKA_BROKER", "")
	v.SetDefault("KAFKA_TOPIC", "activity")
	v.SetDefault("KAFKA_PARTITION", 0)
	v.SetDefault("KAFKA_WRITE_TIMEOUT", "10s")

	// Load env variables
	v.AutomaticEnv()

	// Optional config file support
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignore error if no file

	cfg := &Config{
		Mode:           v.GetString("MODE"),
		ServerAddr:     v.GetString("SERVER_ADDR"),
		TLSCertFile:    v.GetString("TLS_CERT_FILE"),
		TLSKeyFile:     v.GetString("TLS_KEY_FILE"),
		GinMode:        v.GetString("GIN_MODE"),
		DBDriver:       strings.ToLower(v.GetString("DB_DRIVER")),
		DBDSN:          v.GetString("DB_DSN"),
		DBMaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		SessionSecret:  v.GetString("SESSION_SECRET"),
		SessionCookie:  v.GetString("SESSION_COOKIE"),
		SessionTTL:     parseDuration(v.GetString("SESSION_TTL"), 24*time.Hour),
		BcryptCost:     v.GetInt("BCRYPT_COST"),
		MediaBackend:   strings.ToLower(v.GetString("MEDIA_BACKEND")),
		UploadDir:      v.GetString("UPLOAD_DIR"),
		GCSBucket:      v.GetString("GCS_BUCKET"),
		MediaBaseURL:   v.GetString("MEDIA_BASE_URL"),
		MaxUploadMB:    v.GetInt64("MAX_UPLOAD_MB"),
		StatusURL:      v.GetString("STATUS_URL"),
		KafkaBroker:    v.GetString("KAFKA_BROKER"),
		KafkaTopic:     v.GetString("KAFKA_TOPIC"),
		KafkaPartition: v.GetInt("KAFKA_PARTITION"),
		KafkaWriteTO:   parseDuration(v.GetString("KAFKA_WRITE_TIMEOUT"), 10*time.Second),
	}

	if cfg.MediaBaseURL == "" {
		cfg.MediaBaseURL = defaultMediaBaseURL(cfg)
	}

	return cfg
}

func defaultMediaBaseURL(c *Config) string {
	if c.MediaBackend == "gcs" && c.GCSBucket != "" {
		return fmt.Sprintf("https://storage.googleapis.com/%s/", c.GCSBucket)
	}
	return "/static/"
}

func parseDuration(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}
