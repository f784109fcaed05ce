package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port string

	DBDriver    string
	DatabaseURL string
	SQLitePath  string

	JWTSecret string
	JWTTTL    time.Duration

	// StrictAnswers turns on type/required validation of submitted answers.
	StrictAnswers bool

	CORSOrigins    []string
	TrustedProxies []string

	SubmitRatePerMin int
	LoginRatePerMin  int
	CreateRatePerMin int

	LogLevel  string
	LogFormat string

	GoogleClientID string

	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string
	ExportDir      string

	TraceStdout   bool
	PublicBaseURL string
}

// Load reads configuration from the environment, after loading an optional
// .env file from the working directory.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function so tests can supply their own environment.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:           orDefault(getenv("PORT"), "8080"),
		DBDriver:       strings.ToLower(orDefault(getenv("DB_DRIVER"), DriverPostgres)),
		DatabaseURL:    getenv("DATABASE_URL"),
		SQLitePath:     orDefault(getenv("SQLITE_PATH"), "survey-hub.sqlite"),
		JWTSecret:      getenv("JWT_SECRET"),
		LogLevel:       orDefault(getenv("LOG_LEVEL"), "info"),
		LogFormat:      orDefault(getenv("LOG_FORMAT"), "text"),
		GoogleClientID: getenv("GOOGLE_CLIENT_ID"),
		SupabaseURL:    getenv("SUPABASE_URL"),
		SupabaseKey:    getenv("SUPABASE_KEY"),
		SupabaseBucket: orDefault(getenv("SUPABASE_BUCKET"), "survey-exports"),
		ExportDir:      orDefault(getenv("EXPORT_DIR"), "./exports"),
		PublicBaseURL:  strings.TrimRight(getenv("PUBLIC_BASE_URL"), "/"),
		CORSOrigins:    splitList(orDefault(getenv("CORS_ORIGINS"), "http://localhost:4200")),
		TrustedProxies: splitList(getenv("TRUSTED_PROXIES")),
	}

	var err error
	if cfg.JWTTTL, err = parseDuration(getenv("JWT_TTL"), 60*time.Minute); err != nil {
		return Config{}, fmt.Errorf("JWT_TTL: %w", err)
	}
	if cfg.StrictAnswers, err = parseBool(getenv("STRICT_ANSWERS"), false); err != nil {
		return Config{}, fmt.Errorf("STRICT_ANSWERS: %w", err)
	}
	if cfg.TraceStdout, err = parseBool(getenv("TRACE_STDOUT"), false); err != nil {
		return Config{}, fmt.Errorf("TRACE_STDOUT: %w", err)
	}
	if cfg.SubmitRatePerMin, err = parseInt(getenv("SUBMIT_RATE_PER_MIN"), 30); err != nil {
		return Config{}, fmt.Errorf("SUBMIT_RATE_PER_MIN: %w", err)
	}
	if cfg.LoginRatePerMin, err = parseInt(getenv("LOGIN_RATE_PER_MIN"), 10); err != nil {
		return Config{}, fmt.Errorf("LOGIN_RATE_PER_MIN: %w", err)
	}
	if cfg.CreateRatePerMin, err = parseInt(getenv("CREATE_RATE_PER_MIN"), 10); err != nil {
		return Config{}, fmt.Errorf("CREATE_RATE_PER_MIN: %w", err)
	}

	if cfg.DatabaseURL == "" && cfg.DBDriver == DriverPostgres {
		cfg.DatabaseURL = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			orDefault(getenv("DB_HOST"), "localhost"),
			getenv("DB_USER"),
			getenv("DB_PASSWORD"),
			getenv("DB_NAME"),
			orDefault(getenv("DB_PORT"), "5432"),
		)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) Validate() error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if cfg.DBDriver != DriverPostgres && cfg.DBDriver != DriverSQLite {
		return fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	for _, o := range cfg.CORSOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("CORS origin %q must start with http:// or https://", o)
		}
	}
	return nil
}

// SupabaseEnabled reports whether export files go to a Supabase bucket.
func (cfg Config) SupabaseEnabled() bool {
	return cfg.SupabaseURL != "" && cfg.SupabaseKey != ""
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDuration(v string, def time.Duration) (time.Duration, error) {
	if v == "" {
		return def, nil
	}
	return time.ParseDuration(v)
}

func parseBool(v string, def bool) (bool, error) {
	if v == "" {
		return def, nil
	}
	return strconv.ParseBool(v)
}

func parseInt(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, errors.New("must be positive")
	}
	return n, nil
}
