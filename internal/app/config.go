package app

import (
	"time"

	"github.com/yungbote/calctree-backend/internal/logger"
	"github.com/yungbote/calctree-backend/internal/utils"
)

type Config struct {
	Port           string
	JWTSecretKey   string
	TokenTTL       time.Duration
	FrontendOrigin string
}

func LoadConfig(log *logger.Logger) Config {
	tokenTTLSeconds := utils.GetEnvAsInt("TOKEN_TTL", int((24 * time.Hour).Seconds()), log)
	return Config{
		Port:           utils.GetEnv("PORT", "8080", log),
		JWTSecretKey:   utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		TokenTTL:       time.Duration(tokenTTLSeconds) * time.Second,
		FrontendOrigin: utils.GetEnv("FRONTEND_ORIGIN", "http://localhost:3000", log),
	}
}
