package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds the app's configuration. It's loaded from a .config.json
// file, which is optional in development and required in production.
type Config struct {
	Port      int            `json:"port"`
	Env       string         `json:"env"`
	Pepper    string         `json:"pepper"`
	HMACKey   string         `json:"hmac_key"`
	CSRFKey   string         `json:"csrf_key"`
	ClientUrl string         `json:"client_url"`
	Github    GithubConfig   `json:"github"`
	Database  PostgresConfig `json:"database"`
}

// GithubConfig holds the oauth app credentials for Github logins.
type GithubConfig struct {
	ID          string `json:"id"`
	Secret      string `json:"secret"`
	RedirectURL string `json:"redirect_url"`
}

// PostgresConfig holds the database connection parameters.
type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// IsProd reports whether the app runs in production.
func (c Config) IsProd() bool {
	return c.Env == "prod"
}

// ConnectionInfo builds the postgres connection string.
func (pc PostgresConfig) ConnectionInfo() string {
	if pc.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable", pc.Host, pc.Port, pc.User, pc.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", pc.Host, pc.Port, pc.User, pc.Password, pc.Name)
}

// DefaultConfig returns the default dev setup.
func DefaultConfig() Config {
	return Config{
		Port:      1111,
		Env:       "dev",
		Pepper:    "secret-random-string",
		HMACKey:   "secret-hmac-key",
		CSRFKey:   "32-byte-long-auth-key-goes-here!",
		ClientUrl: "http://localhost:3000",
		Database:  DefaultPostgresConfig(),
	}
}

// DefaultPostgresConfig returns the connection parameters of the default dev database.
func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "",
		Name:     "wtf_blogger",
	}
}

// LoadConfig loads configuration from a .config.json file if present,
// otherwise it falls back to the default dev setup. If required is true
// (we're running in production), a missing file is a fatal mistake.
func LoadConfig(required bool) Config {
	f, err := os.Open(".config.json")
	if err != nil {
		if required {
			panic(err)
		}
		fmt.Println("Using the default config...")
		return DefaultConfig()
	}
	defer f.Close()
	var c Config
	if err := json.NewDecoder(f).Decode(&c); err != nil {
		panic(err)
	}
	fmt.Println("Successfully loaded .config.json")
	return c
}
