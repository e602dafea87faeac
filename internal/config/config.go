package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
	"github.com/shopspring/decimal"
)

// Config holds the application configuration
type Config struct {
	AppPort       string          // Application port
	StoreName     string          // Storefront name, printed on receipts
	DBUser        string          // Database user
	DBPassword    string          // Database password
	DBHost        string          // Database host
	DBPort        string          // Database port
	DBName        string          // Database name
	RedisAddr     string          // Redis server address
	RedisPass     string          // Redis password
	RedisDB       int             // Redis database number
	SessionSecret string          // Session token signing secret
	SessionTTL    time.Duration   // Session lifetime
	WalletCap     decimal.Decimal // Maximum wallet balance; funding saturates here
	IsProd        bool            // Is production environment
}

// DefaultWalletCap applies when WALLET_CAP is unset or malformed.
var DefaultWalletCap = decimal.NewFromInt(999999999999)

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	sessionTTL := 24 * time.Hour
	if d, err := time.ParseDuration(os.Getenv("SESSION_TTL")); err == nil && d > 0 {
		sessionTTL = d
	}

	walletCap := DefaultWalletCap
	if c, err := decimal.NewFromString(os.Getenv("WALLET_CAP")); err == nil && c.IsPositive() {
		walletCap = c
	}

	storeName := os.Getenv("STORE_NAME")
	if storeName == "" {
		storeName = "La Desesperanza Bakery"
	}

	return &Config{
		AppPort:       os.Getenv("APP_PORT"),       // Application port
		StoreName:     storeName,                   // Storefront name
		DBUser:        os.Getenv("DB_USER"),        // Database user
		DBPassword:    os.Getenv("DB_PASSWORD"),    // Database password
		DBHost:        os.Getenv("DB_HOST"),        // Database host
		DBPort:        os.Getenv("DB_PORT"),        // Database port
		DBName:        os.Getenv("DB_NAME"),        // Database name
		RedisAddr:     os.Getenv("REDIS_ADDR"),     // Redis server address
		RedisPass:     os.Getenv("REDIS_PASS"),     // Redis password
		RedisDB:       redisDB,                     // Redis database number
		SessionSecret: os.Getenv("SESSION_SECRET"), // Session signing secret
		SessionTTL:    sessionTTL,                  // Session lifetime
		WalletCap:     walletCap,                   // Wallet balance ceiling
		IsProd:        os.Getenv("IS_PROD") == "true",
	}
}

// DSN assembles the MySQL data source name.
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}
