package config

import "time"

// selects which session resolver backs the application
type AuthMode string

const (
	ModeLocal     AuthMode = "local"
	ModeFederated AuthMode = "federated"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Environment string
	Port        string
	BaseURL     string
	Store       string
	DatabaseURL string
	AuthMode    AuthMode
	JWTSecret   string
	JWTIssuer   string
	SessionTTL  time.Duration
	Cookie      CookieConfig
	RedisURL    string
	RateLimit   string
	CORSOrigins []string
	Google      GoogleConfig
	Firebase    FirebaseConfig
	Avatars     AvatarConfig

	// proxies whose X-Forwarded-For is believed; none when empty
	TrustedProxies []string
}

type CookieConfig struct {
	Name     string
	Secure   bool
	SameSite string // "lax" or "strict"
}

// server-side Google sign-in through goth; optional in local mode
type GoogleConfig struct {
	ClientID      string
	ClientSecret  string
	SessionSecret string // signs the short-lived OAuth state cookie
}

type FirebaseConfig struct {
	APIKey          string
	AuthDomain      string
	ProjectID       string
	ClientEmail     string
	PrivateKey      string
	CredentialsFile string
}

// S3-compatible bucket for profile photos; optional
type AvatarConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	UploadTTL       time.Duration
}

// flags for the migrate command
type Flags struct {
	Command string
	Version int64
	Dir     string
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

func (a AvatarConfig) Enabled() bool {
	return a.Bucket != ""
}
