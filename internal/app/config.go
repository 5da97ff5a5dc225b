package app

import (
	"time"

	"github.com/mirrorwell/mirrorwell-backend/internal/pkg/logger"
	"github.com/mirrorwell/mirrorwell-backend/internal/utils"
)

type Config struct {
	JWTSecretKey         string
	AccessTokenTTL       time.Duration
	BillingWebhookSecret string
	Port                 string
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTLSeconds := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	billingSecret := utils.GetEnv("BILLING_WEBHOOK_SECRET", "", log)
	port := utils.GetEnv("PORT", "8080", log)
	return Config{
		JWTSecretKey:         jwtSecretKey,
		AccessTokenTTL:       time.Duration(accessTokenTTLSeconds) * time.Second,
		BillingWebhookSecret: billingSecret,
		Port:                 port,
	}
}
