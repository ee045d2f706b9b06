package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment      string
	HTTPPort         string
	HTTPSPort        string
	Domains          []string
	CertCacheDir     string
	DBDriver         string
	DBPath           string
	DatabaseURL      string
	DeepSeekAPIKey   string
	DeepSeekAPIURL   string
	DeepSeekModel    string
	GeneralDataDir   string
	PersonalDataDir  string
	LogDir           string
	QueryTimeout     time.Duration
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	SupportTeamPhone string
}

var isTest bool

func init() {
	isTest = os.Getenv("GO_ENVIRONMENT") == "test"
	if !isTest {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}
}

func Load() Config {
	return Config{
		Environment:      getEnv("ENVIRONMENT", "development"),
		HTTPPort:         getEnv("HTTP_PORT", "8000"),
		HTTPSPort:        getEnv("HTTPS_PORT", "443"),
		Domains:          []string{getEnv("DOMAIN", "example.com")},
		CertCacheDir:     getEnv("CERT_CACHE_DIR", "/etc/letsencrypt/live/example.com"),
		DBDriver:         getEnv("DB_DRIVER", "sqlite"),
		DBPath:           getEnv("DB_PATH", "supportflow.db"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		DeepSeekAPIKey:   getEnv("DEEPSEEK_API_KEY", ""),
		DeepSeekAPIURL:   getEnv("DEEPSEEK_API_URL", "https://api.deepseek.com/chat/completions"),
		DeepSeekModel:    getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
		GeneralDataDir:   getEnv("GENERAL_DATA_DIR", "data/general_information"),
		PersonalDataDir:  getEnv("PERSONAL_DATA_DIR", "data/personalised_agent"),
		LogDir:           getEnv("LOG_DIR", "logs"),
		QueryTimeout:     time.Duration(getEnvAsInt("QUERY_TIMEOUT", 120)) * time.Second,
		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
		SupportTeamPhone: getEnv("SUPPORT_TEAM_PHONE", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
