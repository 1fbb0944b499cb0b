package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultSearchURL is the otomoto city-car search the harvester was built for.
// The `{}` slot takes the page number.
const DefaultSearchURL = "https://www.otomoto.pl/osobowe/seg-city-car--seg-mini/od-2003" +
	"?search%5Bfilter_enum_damaged%5D=0&search%5Bfilter_float_mileage%3Ato%5D=200000" +
	"&search%5Bfilter_float_price%3Ato%5D=15000&page={}&search%5Badvanced_search_expanded%5D=true"

// Config holds all application configuration loaded from environment variables.
type Config struct {
	SearchURLTemplate string
	MaxPages          int
	EmptyPageStop     int

	FetchMode         string
	ChromeBin         string
	RequestTimeoutSec int
	MaxRetries        int
	UserAgent         string
	MaxConcurrency    int

	RawOutputPath    string
	CleanOutputPath  string
	ColumnPolicyPath string
	TableName        string

	SQLitePath string

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	Progress string
	LogLevel string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		SearchURLTemplate: getEnv("SEARCH_URL_TEMPLATE", DefaultSearchURL),
		MaxPages:          getEnvInt("MAX_PAGES", 100),
		EmptyPageStop:     getEnvInt("EMPTY_PAGE_STOP", 0),

		FetchMode:         strings.ToLower(getEnv("FETCH_MODE", "http")),
		ChromeBin:         getEnv("CHROME_BIN", ""),
		RequestTimeoutSec: getEnvInt("REQUEST_TIMEOUT_SEC", 30),
		MaxRetries:        getEnvInt("MAX_RETRIES", 1),
		UserAgent:         getEnv("USER_AGENT", ""),
		MaxConcurrency:    getEnvInt("MAX_CONCURRENCY", 1),

		RawOutputPath:    getEnv("RAW_OUTPUT_PATH", "./data/cars_raw.xlsx"),
		CleanOutputPath:  getEnv("CLEAN_OUTPUT_PATH", "./data/cars.xlsx"),
		ColumnPolicyPath: getEnv("COLUMN_POLICY_PATH", ""),
		TableName:        getEnv("TABLE_NAME", "listings"),

		SQLitePath: getEnv("SQLITE_PATH", ""),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "listings_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		Progress: strings.ToLower(getEnv("PROGRESS", "log")),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
