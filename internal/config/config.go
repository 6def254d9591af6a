package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strings" // strings trims trailing slashes from the backend URL
	"time"    // time expresses request and mutation timeouts

	"github.com/joho/godotenv" // godotenv loads an optional .env file into the environment
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Required values are enforced by must(); the rest
// fall back to defaults suitable for local development.
type Config struct {
	Env             string        // application environment (e.g. "dev", "prod")
	Port            string        // HTTP port the console listens on
	BackendURL      string        // base URL of the restaurant REST API, including the /api prefix
	RequestTimeout  time.Duration // timeout for a single backend request
	MutationTimeout time.Duration // upper bound for an in-flight mutation, which callers cannot cancel
	RefetchTimeout  time.Duration // timeout for a background revalidation fetch
	LogFile         string        // optional log file, in addition to stdout/stderr
}

// Load reads configuration values from environment variables and returns a
// Config.  A .env file in the working directory is loaded first when
// present; variables already set in the environment win.  Missing required
// variables cause the program to exit with a fatal log message.
func Load() Config {
	_ = godotenv.Load() // .env is optional
	return Config{
		Env:             must("APP_ENV"),
		Port:            must("APP_PORT"),
		BackendURL:      strings.TrimRight(must("BACKEND_URL"), "/"),
		RequestTimeout:  envDur("BACKEND_REQUEST_TIMEOUT", 15*time.Second),
		MutationTimeout: envDur("MUTATION_TIMEOUT", 30*time.Second),
		RefetchTimeout:  envDur("REFETCH_TIMEOUT", 15*time.Second),
		LogFile:         os.Getenv("LOG_FILE"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
