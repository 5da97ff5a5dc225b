package utils

import (
	"os"
	"strconv"
	"strings"

	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/logger"
)

func GetEnv(key, fallback string, log *logger.Logger) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		if log != nil {
			log.Debug("Env var not set, using fallback", "key", key)
		}
		return fallback
	}
	return val
}

func GetEnvAsInt(key string, fallback int, log *logger.Logger) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		if log != nil {
			log.Warn("Env var is not an int, using fallback", "key", key, "value", val)
		}
		return fallback
	}
	return parsed
}
