package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Env struct {
	AppAddr string
	GinMode string

	DBUser string
	DBPass string
	DBHost string
	DBName string

	JWTSecret string
	JWTTTL    time.Duration

	AMQPURL     string
	NotifyQueue string

	CORSAllowedOrigins []string
	OSRMBaseURL        string
	OTPTTL             time.Duration
}

func LoadEnv() Env {
	appAddr := strings.TrimSpace(os.Getenv("APP_ADDR"))
	if appAddr == "" {
		appAddr = ":8080"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))

	return Env{
		AppAddr: appAddr,
		GinMode: ginMode,

		DBUser: getenv("DB_USER", "root"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: getenv("DB_HOST", "127.0.0.1:3306"),
		DBName: getenv("DB_NAME", "rideshare"),

		JWTSecret: getenv("JWT_SECRET", "super-secret-key-change-me"),
		JWTTTL:    time.Duration(getenvInt("JWT_TTL_HOURS", 24)) * time.Hour,

		AMQPURL:     strings.TrimSpace(os.Getenv("AMQP_URL")),
		NotifyQueue: getenv("NOTIFY_QUEUE", "notifications"),

		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		OSRMBaseURL:        getenv("OSRM_BASE_URL", "http://router.project-osrm.org"),
		OTPTTL:             time.Duration(getenvInt("OTP_TTL_MINUTES", 10)) * time.Minute,
	}
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func splitList(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
