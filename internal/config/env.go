package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultSessionTTL = 7 * 24 * time.Hour
	defaultCookieName = "session_token"
	defaultRateLimit  = "20-M"
)

// loads configuration from the environment (and .env when present)
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // production environments may not have a .env file
	}

	return FromEnvironment()
}

// only the database URL, for tools that never serve requests
func LoadDatabaseURL() (string, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // production environments may not have a .env file
	}

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return "", missing("DATABASE_URL")
	}

	return url, nil
}

// builds and validates a Config from the current process environment
func FromEnvironment() (*Config, error) {
	cfg := &Config{
		Environment: getenv("ENVIRONMENT", "development"),
		Port:        getenv("PORT", "8080"),
		BaseURL:     getenv("BASE_URL", "http://localhost:8080"),
		Store:       getenv("STORE", StorePostgres),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		AuthMode:    AuthMode(strings.ToLower(getenv("AUTH_MODE", string(ModeLocal)))),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTIssuer:   getenv("JWT_ISSUER", "authgate"),
		SessionTTL:  getenvDuration("SESSION_TTL", defaultSessionTTL),
		RedisURL:    os.Getenv("REDIS_URL"),
		RateLimit:   getenv("AUTH_RATE_LIMIT", defaultRateLimit),
		CORSOrigins: getenvList("CORS_ORIGINS"),
		Google: GoogleConfig{
			ClientID:      os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret:  os.Getenv("GOOGLE_CLIENT_SECRET"),
			SessionSecret: os.Getenv("SESSION_SECRET"),
		},
		Firebase: FirebaseConfig{
			APIKey:          os.Getenv("FIREBASE_API_KEY"),
			AuthDomain:      os.Getenv("FIREBASE_AUTH_DOMAIN"),
			ProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
			ClientEmail:     os.Getenv("FIREBASE_CLIENT_EMAIL"),
			PrivateKey:      normalizePEM(os.Getenv("FIREBASE_PRIVATE_KEY")),
			CredentialsFile: os.Getenv("FIREBASE_CREDENTIALS_FILE"),
		},
		Avatars: AvatarConfig{
			Bucket:          os.Getenv("AVATAR_BUCKET"),
			Region:          getenv("AVATAR_REGION", "us-east-1"),
			Endpoint:        os.Getenv("AVATAR_ENDPOINT"),
			AccessKeyID:     os.Getenv("AVATAR_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AVATAR_SECRET_ACCESS_KEY"),
			PublicBaseURL:   os.Getenv("AVATAR_PUBLIC_BASE_URL"),
			UploadTTL:       getenvDuration("AVATAR_UPLOAD_TTL", 15*time.Minute),
		},
	}

	cfg.Cookie = CookieConfig{
		Name:     getenv("SESSION_COOKIE_NAME", defaultCookieName),
		Secure:   getenvBool("COOKIE_SECURE", cfg.IsProduction()),
		SameSite: strings.ToLower(getenv("COOKIE_SAMESITE", "lax")),
	}

	cfg.TrustedProxies = getenvList("TRUSTED_PROXIES")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// checks that every setting the selected mode depends on is present
func (c *Config) Validate() error {
	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return missing("DATABASE_URL")
		}
	case StoreMemory:
	default:
		return &ConfigurationError{Key: "STORE", Reason: "must be postgres or memory"}
	}

	if c.SessionTTL <= 0 {
		return &ConfigurationError{Key: "SESSION_TTL", Reason: "must be positive"}
	}

	if c.Cookie.SameSite != "lax" && c.Cookie.SameSite != "strict" {
		return &ConfigurationError{Key: "COOKIE_SAMESITE", Reason: "must be lax or strict"}
	}

	switch c.AuthMode {
	case ModeLocal:
		if c.JWTSecret == "" {
			return missing("JWT_SECRET")
		}

		if c.Google.Enabled() && c.Google.SessionSecret == "" {
			return missing("SESSION_SECRET")
		}
	case ModeFederated:
		if c.Firebase.APIKey == "" {
			return missing("FIREBASE_API_KEY")
		}

		if c.Firebase.ProjectID == "" {
			return missing("FIREBASE_PROJECT_ID")
		}

		if c.Firebase.CredentialsFile == "" {
			if c.Firebase.ClientEmail == "" {
				return missing("FIREBASE_CLIENT_EMAIL")
			}

			if c.Firebase.PrivateKey == "" {
				return missing("FIREBASE_PRIVATE_KEY")
			}
		}
	default:
		return &ConfigurationError{Key: "AUTH_MODE", Reason: "must be local or federated"}
	}

	return nil
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}

	return fallback
}

// accepts Go duration syntax, or whole seconds under KEY_SECONDS
func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}

	if val := os.Getenv(key + "_SECONDS"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	return fallback
}

func getenvList(key string) []string {
	var out []string

	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}

// service-account keys are usually pasted with literal \n sequences
func normalizePEM(value string) string {
	value = strings.TrimSpace(value)

	if strings.Contains(value, "\\n") && !strings.Contains(value, "\n") {
		value = strings.ReplaceAll(value, "\\n", "\n")
	}

	return value
}
