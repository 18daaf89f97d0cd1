// Package config loads the service configuration from the environment. A
// .env file next to the binary is picked up automatically.
package config

import (
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	HTTPAddr string

	// Repository holding the ledger and the published documents.
	RepoURL  string
	APIBase  string
	Owner    string
	Repo     string
	Branch   string
	Username string
	Password string

	// The one form this deployment serves.
	FormID       string
	FormTitle    string
	TemplatePath string
	LedgerPath   string
	PublishDir   string
	RecordsURL   string

	SessionSecret string
	SessionTTL    time.Duration
	LedgerRetries int

	GelfAddr string
}

func Load() *Config {
	cfg := &Config{
		HTTPAddr: getEnv("KPADMIN_ADDR", ":8080"),

		RepoURL:  getEnv("FORGEJO_REPO_URL", ""),
		APIBase:  getEnv("FORGEJO_API_BASE", ""),
		Owner:    getEnv("FORGEJO_OWNER", "poduska-lab"),
		Repo:     getEnv("FORGEJO_REPO", "KPAdmin"),
		Branch:   getEnv("FORGEJO_BRANCH", "main"),
		Username: getEnv("FORGEJO_USERNAME", ""),
		Password: getEnv("FORGEJO_PASSWORD", ""),

		FormID:       getEnv("KPADMIN_FORM_ID", "f100d_e"),
		FormTitle:    getEnv("KPADMIN_FORM_TITLE", "NSERC Form 100D Appendix E"),
		TemplatePath: getEnv("KPADMIN_TEMPLATE", "assets/f100d_e_fillable.pdf"),
		LedgerPath:   getEnv("KPADMIN_LEDGER_PATH", "assets/form_records.csv"),
		PublishDir:   getEnv("KPADMIN_PUBLISH_DIR", "assets/filled_forms"),
		RecordsURL:   getEnv("KPADMIN_RECORDS_URL", ""),

		SessionSecret: getEnv("KPADMIN_SESSION_SECRET", "kpadmin-dev-secret-change-me"),
		SessionTTL:    getEnvDuration("KPADMIN_SESSION_TTL", time.Hour),
		LedgerRetries: getEnvInt("KPADMIN_LEDGER_RETRIES", 3),

		GelfAddr: getEnv("KPADMIN_GELF_ADDR", ""),
	}
	if cfg.RecordsURL == "" {
		cfg.RecordsURL = cfg.RepoURL
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n := 0
	for _, c := range v {
		if c < '0' || c > '9' {
			return fallback
		}
		n = n*10 + int(c-'0')
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
