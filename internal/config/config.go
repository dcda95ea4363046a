package config // package config loads application configuration from environment variables

import (
	"encoding/base64" // decoding the base64 Ed25519 key material
	"log"             // log is used to report configuration errors and halt execution
	"os"              // os provides access to environment variables
	"strconv"         // strconv converts strings to other types
	"time"            // timezone loading for the ticket clock
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. The types reflect how the values are used
// by the application: strings for identifiers and secrets, ints for
// durations and costs, byte slices for raw key material.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	Issuer      string         // identity string stamped into issued tickets
	Timezone    *time.Location // operating timezone for issued_at and pass validity
	SignSeed    []byte         // raw 32-byte Ed25519 seed (issuer side, optional)
	VerifyKey   []byte         // raw 32-byte Ed25519 public key (verifier side)
}

// Load reads configuration values from environment variables and
// returns a Config. Required variables are enforced by must() and
// missing or malformed values cause the program to exit with a fatal
// log message. The signing seed is optional so that verify-only
// deployments (gate fleets) never hold private key material.
func Load() Config {
	cfg := Config{
		Env:            must("APP_ENV"),                   // environment (dev/test/prod)
		Port:           must("APP_PORT"),                  // port to bind the HTTP server
		DBUser:         must("DB_USER"),                   // database user
		DBPass:         os.Getenv("DB_PASS"),              // database password (empty allowed)
		DBHost:         must("DB_HOST"),                   // database host
		DBPort:         must("DB_PORT"),                   // database port
		DBName:         must("DB_NAME"),                   // database name
		JWTSecret:      must("JWT_SECRET"),                // secret used for signing JWTs
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),   // TTL for access tokens in minutes
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"), // TTL for refresh tokens in days
		BcryptCost:     mustInt("BCRYPT_COST"),            // bcrypt cost factor
		Issuer:         envOr("TICKET_ISSUER", "RTS RapidRide"),
	}

	tzName := envOr("TICKET_TIMEZONE", "America/Denver")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		log.Fatalf("invalid TICKET_TIMEZONE %q: %v", tzName, err)
	}
	cfg.Timezone = loc

	cfg.VerifyKey = mustKey("ED25519_PUBLIC_KEY_B64", 32)
	if seed := os.Getenv("ED25519_PRIVATE_KEY_B64"); seed != "" {
		cfg.SignSeed = decodeKey("ED25519_PRIVATE_KEY_B64", seed, 32)
	}
	return cfg
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an
// integer. If conversion fails, the application exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// envOr returns the value of an optional variable or a default.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// mustKey reads a required base64 key variable and decodes it,
// enforcing the expected raw length.
func mustKey(key string, size int) []byte {
	return decodeKey(key, must(key), size)
}

func decodeKey(key, val string, size int) []byte {
	b, err := base64.StdEncoding.DecodeString(val)
	if err != nil {
		log.Fatalf("invalid base64 in %s: %v", key, err)
	}
	if len(b) != size {
		log.Fatalf("%s must decode to %d bytes, got %d", key, size, len(b))
	}
	return b
}
