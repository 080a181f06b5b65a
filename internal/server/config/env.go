package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/nutritracker/internal/flagx"
	"github.com/joho/godotenv"
)

// lookupEnv is a seam for tests.
var lookupEnv = os.LookupEnv

// parseEnv loads a .env file (the one named by -env-file, or ./.env when it
// exists) into the process environment and overlays the variables below.
// Variables already set in the environment win over the file.
//
//	HTTP_ADDRESS, GRPC_ADDRESS, DATABASE_URL, SECRET_KEY, ACCESS_TOKEN_TTL,
//	REFRESH_TOKEN_TTL, PASSWORD_HASH_COST, LOG_LEVEL, USDA_BASE_URL,
//	USDA_API_KEY, USDA_TIMEOUT, USDA_RATE_LIMIT, LOGIN_RATE_LIMIT,
//	LOGIN_RATE_BURST, CORS_ALLOWED_ORIGINS, S3_ROOT_USER, S3_ROOT_PASSWORD,
//	S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT
//
// Malformed numbers or durations panic, same as a broken JSON file.
func parseEnv(config *Config) {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	envString(&config.EndpointAddrHTTP, "HTTP_ADDRESS")
	envString(&config.EndpointAddrGRPC, "GRPC_ADDRESS")
	envString(&config.DatabaseDSN, "DATABASE_URL")
	envString(&config.SecretKey, "SECRET_KEY")
	envDuration(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_TTL")
	envDuration(&config.RefreshTokenValidityDuration, "REFRESH_TOKEN_TTL")
	envInt(&config.PasswordHashCost, "PASSWORD_HASH_COST")
	envString(&config.LogLevel, "LOG_LEVEL")
	envString(&config.USDABaseURL, "USDA_BASE_URL")
	envString(&config.USDAAPIKey, "USDA_API_KEY")
	envDuration(&config.USDARequestTimeout, "USDA_TIMEOUT")
	envFloat(&config.USDARateLimit, "USDA_RATE_LIMIT")
	envFloat(&config.LoginRateLimit, "LOGIN_RATE_LIMIT")
	envInt(&config.LoginRateBurst, "LOGIN_RATE_BURST")
	envList(&config.CORSAllowedOrigins, "CORS_ALLOWED_ORIGINS")
	envString(&config.S3RootUser, "S3_ROOT_USER")
	envString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
}

func envString(dst *string, key string) {
	if v, ok := lookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if v, ok := lookupEnv(key); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", key, err))
		}
		*dst = n
	}
}

func envFloat(dst *float64, key string) {
	if v, ok := lookupEnv(key); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			panic(fmt.Errorf("%s: %w", key, err))
		}
		*dst = f
	}
}

func envDuration(dst *time.Duration, key string) {
	if v, ok := lookupEnv(key); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", key, err))
		}
		*dst = d
	}
}

func envList(dst *[]string, key string) {
	if v, ok := lookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		*dst = out
	}
}
