package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "COACHPORTAL_"

func readYAML(path string, c *Config) error {
	if path == "" {
		return nil
	}

	filename, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	yamlFile, err := os.ReadFile(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(yamlFile, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// loadDotEnv is best effort, a missing .env is normal outside development.
func loadDotEnv() {
	_ = godotenv.Load()
}

func applyEnv(c *Config) error {
	strs := map[string]*string{
		"ENV":            &c.Env,
		"HOST":           &c.Server.Host,
		"CSRF_KEY":       &c.Server.CSRFKey,
		"BACKEND_URL":    &c.Backend.BaseURL,
		"REDIS_ADDR":     &c.Session.Redis.Addr,
		"REDIS_PASSWORD": &c.Session.Redis.Password,
		"FILES_PATH":     &c.Files.Path,
	}
	for k, dst := range strs {
		if v, ok := os.LookupEnv(envPrefix + k); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"PORT":     &c.Server.Port,
		"REDIS_DB": &c.Session.Redis.DB,
	}
	for k, dst := range ints {
		v, ok := os.LookupEnv(envPrefix + k)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, k, err)
		}
		*dst = n
	}

	durations := map[string]*time.Duration{
		"BACKEND_TIMEOUT":  &c.Backend.Timeout,
		"SESSION_LIFETIME": &c.Session.Lifetime,
	}
	for k, dst := range durations {
		v, ok := os.LookupEnv(envPrefix + k)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, k, err)
		}
		*dst = d
	}

	bools := map[string]*bool{
		"SECURE":      &c.Server.Secure,
		"TRUST_PROXY": &c.Server.TrustProxy,
	}
	for k, dst := range bools {
		v, ok := os.LookupEnv(envPrefix + k)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, k, err)
		}
		*dst = b
	}

	return nil
}
