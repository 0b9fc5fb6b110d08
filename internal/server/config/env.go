package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/docvault/internal/flagx"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// loadDotEnv loads the file given with -env-file, or ./.env when present.
// Variables already set in the process environment win.
func loadDotEnv() {
	path := flagx.EnvFileFlags()
	if path == "" {
		if _, err := os.Stat(defaultEnvFile); errors.Is(err, fs.ErrNotExist) {
			return
		}
		path = defaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		panic(fmt.Errorf("load env file %s: %w", path, err))
	}
}

// parseEnv overlays values from environment variables. Unset variables leave
// config untouched; malformed numbers, booleans or durations panic.
func parseEnv(config *Config) {
	loadDotEnv()

	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		config.EndpointAddrHTTP = ":" + v
	}
	envString(&config.CORSOrigin, "CORS_ORIGIN")
	envString(&config.DatabaseDSN, "DATABASE_URI")
	envString(&config.SecretKey, "JWT_SECRET")
	envDuration(&config.TokenValidityDuration, "TOKEN_VALIDITY")
	envString(&config.CookieName, "COOKIE_NAME")
	envDuration(&config.CookieMaxAge, "COOKIE_MAX_AGE")
	envBool(&config.Production, "PRODUCTION")
	envInt(&config.BcryptCost, "BCRYPT_COST")
	envString(&config.OTPBackend, "OTP_BACKEND")
	envDuration(&config.OTPValidityDuration, "OTP_VALIDITY")
	envBool(&config.InvalidateSiblingCodes, "OTP_INVALIDATE_SIBLINGS")
	envString(&config.RedisAddr, "REDIS_ADDR")
	envString(&config.RedisPassword, "REDIS_PASSWORD")
	envInt(&config.RedisDB, "REDIS_DB")
	envString(&config.SMTPHost, "SMTP_HOST")
	envInt(&config.SMTPPort, "SMTP_PORT")
	envString(&config.SMTPUser, "SMTP_USER")
	envString(&config.SMTPPassword, "SMTP_PASSWORD")
	envString(&config.SMTPFrom, "SMTP_FROM")
	envString(&config.S3RootUser, "S3_ACCESS_KEY")
	envString(&config.S3RootPassword, "S3_SECRET_KEY")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_ENDPOINT")
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = n
}

func envBool(dst *bool, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = b
}

func envDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = d
}
