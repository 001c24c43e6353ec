package config

import (
	"time"
)

// Path is the location of the yaml config file, provided by main.
type Path string

type Config struct {
	Env       string    `yaml:"env"`
	Server    Server    `yaml:"server"`
	Backend   Backend   `yaml:"backend"`
	Session   Session   `yaml:"session"`
	Dashboard Dashboard `yaml:"dashboard"`
	Files     Files     `yaml:"files"`
	RateLimit RateLimit `yaml:"rate_limit"`
}

type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// CSRFKey must be 32 bytes. An empty key generates a random one at start,
	// which invalidates forms across restarts.
	CSRFKey string `yaml:"csrf_key"`
	Secure  bool   `yaml:"secure"`
	// TrustProxy takes the client address from X-Forwarded-For/X-Real-IP.
	// Enable only behind a reverse proxy that overwrites those headers.
	TrustProxy bool `yaml:"trust_proxy"`
}

type Backend struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type Session struct {
	Lifetime time.Duration `yaml:"lifetime"`
	// RegisterSettle is how long to wait after a registration that returned
	// tokens before asking the backend for the profile.
	RegisterSettle time.Duration `yaml:"register_settle"`
	Redis          Redis         `yaml:"redis"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Dashboard struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	SignalDelay     time.Duration `yaml:"signal_delay"`
}

type Files struct {
	Path string `yaml:"path"`
}

type RateLimit struct {
	PerMinute int `yaml:"per_minute"`
	Burst     int `yaml:"burst"`
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func defaults() *Config {
	return &Config{
		Env: "development",
		Server: Server{
			Host: "localhost",
			Port: 8123,
		},
		Backend: Backend{
			BaseURL: "http://localhost:5001/api",
			Timeout: 15 * time.Second,
		},
		Session: Session{
			Lifetime:       30 * 24 * time.Hour,
			RegisterSettle: 500 * time.Millisecond,
		},
		Dashboard: Dashboard{
			RefreshInterval: 30 * time.Second,
			SignalDelay:     2 * time.Second,
		},
		Files: Files{
			Path: "config/files.json",
		},
		RateLimit: RateLimit{
			PerMinute: 20,
			Burst:     5,
		},
	}
}

// New builds the config from defaults, the yaml file at p (if present), a
// .env file and COACHPORTAL_* environment variables, in that order.
func New(p Path) (*Config, error) {
	c := defaults()

	if err := readYAML(string(p), c); err != nil {
		return nil, err
	}

	loadDotEnv()
	if err := applyEnv(c); err != nil {
		return nil, err
	}

	return c, nil
}
