package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/docvault/internal/flagx"
	"github.com/dmitrijs2005/docvault/internal/timex"
)

// JsonConfig mirrors Config for JSON decoding. Durations go through
// timex.Duration so "24h" and integer nanoseconds are both accepted.
// Pointers distinguish "absent" from an explicit zero for booleans.
type JsonConfig struct {
	EndpointAddrHTTP       string         `json:"endpoint_addr_http"`
	ReadHeaderTimeout      timex.Duration `json:"read_header_timeout"`
	ShutdownTimeout        timex.Duration `json:"shutdown_timeout"`
	CORSOrigin             string         `json:"cors_origin"`
	DatabaseDSN            string         `json:"database_dsn"`
	SecretKey              string         `json:"secret_key"`
	TokenValidityDuration  timex.Duration `json:"token_validity_duration"`
	CookieName             string         `json:"cookie_name"`
	CookieMaxAge           timex.Duration `json:"cookie_max_age"`
	Production             *bool          `json:"production"`
	BcryptCost             int            `json:"bcrypt_cost"`
	OTPBackend             string         `json:"otp_backend"`
	OTPValidityDuration    timex.Duration `json:"otp_validity_duration"`
	InvalidateSiblingCodes *bool          `json:"invalidate_sibling_codes"`
	RedisAddr              string         `json:"redis_addr"`
	RedisPassword          string         `json:"redis_password"`
	RedisDB                int            `json:"redis_db"`
	SMTPHost               string         `json:"smtp_host"`
	SMTPPort               int            `json:"smtp_port"`
	SMTPUser               string         `json:"smtp_user"`
	SMTPPassword           string         `json:"smtp_password"`
	SMTPFrom               string         `json:"smtp_from"`
	S3RootUser             string         `json:"s3_root_user"`
	S3RootPassword         string         `json:"s3_root_password"`
	S3Bucket               string         `json:"s3_bucket"`
	S3Region               string         `json:"s3_region"`
	S3BaseEndpoint         string         `json:"s3_base_endpoint"`
}

// parseJson overlays values from the file named by -c/-config. Fields that
// are absent (zero) in the file leave config untouched. A missing flag is a
// no-op; an unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setDuration(&config.ReadHeaderTimeout, c.ReadHeaderTimeout)
	setDuration(&config.ShutdownTimeout, c.ShutdownTimeout)
	setString(&config.CORSOrigin, c.CORSOrigin)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.TokenValidityDuration, c.TokenValidityDuration)
	setString(&config.CookieName, c.CookieName)
	setDuration(&config.CookieMaxAge, c.CookieMaxAge)
	if c.Production != nil {
		config.Production = *c.Production
	}
	setInt(&config.BcryptCost, c.BcryptCost)
	setString(&config.OTPBackend, c.OTPBackend)
	setDuration(&config.OTPValidityDuration, c.OTPValidityDuration)
	if c.InvalidateSiblingCodes != nil {
		config.InvalidateSiblingCodes = *c.InvalidateSiblingCodes
	}
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setInt(&config.RedisDB, c.RedisDB)
	setString(&config.SMTPHost, c.SMTPHost)
	setInt(&config.SMTPPort, c.SMTPPort)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.SMTPFrom, c.SMTPFrom)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
