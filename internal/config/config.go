package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port           int
	NatsURL        string
	NatsToken      string
	DatabaseURL    string
	LogLevel       string
	APIToken       string
	SelfName       string
	PageSize       int
	MaxUploadBytes int64
	StatePath      string
}

func Load() Config {
	return Config{
		Port:           envInt("CHATVIEW_PORT", 8760),
		NatsURL:        envStr("NATS_URL", ""),
		NatsToken:      envStr("NATS_TOKEN", ""),
		DatabaseURL:    envStr("DATABASE_URL", ""),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		APIToken:       envStr("CHATVIEW_API_TOKEN", ""),
		SelfName:       envStr("CHATVIEW_SELF_NAME", "You"),
		PageSize:       envInt("CHATVIEW_PAGE_SIZE", 50),
		MaxUploadBytes: int64(envInt("CHATVIEW_MAX_UPLOAD_BYTES", 32<<20)),
		StatePath:      envStr("CHATVIEW_STATE_PATH", "~/.chatview/cursor.json"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
