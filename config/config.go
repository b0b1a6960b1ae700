package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all app configuration
type Config struct {
	Env      string
	HTTPPort string

	// Redis (system of record: profiles, leaderboards, checkpoint)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Chain
	ChainRPCURL         string
	ChainRPCFallbackURL string
	PoolAddress         string

	// Arcscan transaction API
	ArcscanAPI string

	// Scanner
	ScanInterval  int // milliseconds between scan passes
	FlushTimeout  int // milliseconds per wallet flush
	SeenTxTTL     int // hours the tx dedup set is retained
	LeaderboardN  int // entries returned by the public leaderboard
	MetricTopN    int // entries per metric in the combined leaderboard
	Debug         bool
	StartFromZero bool // backfill: ignore stored checkpoint, scan from genesis

	// Kafka (optional downstream event feed)
	KafkaBrokers []string
	KafkaTopic   string

	// ClickHouse (optional swap archive)
	ClickhouseAddr     string
	ClickhouseUsername string
	ClickhousePassword string
	ClickhouseTimeout  int
}

// LoadConfig loads configuration from environment variables, with optional .env file
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg := &Config{
		Env:      getEnv("ENV", "local"),
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		ChainRPCURL:         getEnv("ARC_RPC_URL", "https://rpc.testnet.arc.network"),
		ChainRPCFallbackURL: getEnv("ARC_RPC_URL_FALLBACK", ""),
		PoolAddress:         getEnv("SWAP_POOL_ADDRESS", "0x2F4490e7c6F3DaC23ffEe6e71bFcb5d1CCd7d4eC"),

		ArcscanAPI: getEnv("ARCSCAN_API", "https://testnet.arcscan.app/api"),

		ScanInterval:  getEnvAsInt("SCAN_INTERVAL_MS", 5000),
		FlushTimeout:  getEnvAsInt("FLUSH_TIMEOUT_MS", 10000),
		SeenTxTTL:     getEnvAsInt("SEEN_TX_TTL_HOURS", 48),
		LeaderboardN:  getEnvAsInt("LEADERBOARD_N", 100),
		MetricTopN:    getEnvAsInt("METRIC_TOP_N", 10),
		Debug:         getEnvAsBool("DEBUG", false),
		StartFromZero: getEnvAsBool("START_FROM_ZERO", false),

		KafkaBrokers: getEnvAsSlice("KAFKA_BROKERS", nil, ","),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "swaps"),

		ClickhouseAddr:     getEnv("CLICKHOUSE_ADDR", ""),
		ClickhouseUsername: getEnv("CLICKHOUSE_USERNAME", ""),
		ClickhousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),
		ClickhouseTimeout:  getEnvAsInt("CLICKHOUSE_TIMEOUT", 10),
	}

	return cfg
}

// Helper functions for parsing environment variables
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	valStr := getEnv(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsSlice(key string, defaultVal []string, sep string) []string {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultVal
	}
	return strings.Split(valStr, sep)
}
