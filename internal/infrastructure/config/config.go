package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddress   string
	ShutdownTimeout time.Duration

	// Bearer token signing key
	AuthSecret string

	Database Database
}

// Database selects the store backend.
type Database struct {
	Driver string // "sqlite" or "postgres"
	DSN    string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()
	return &Config{
		ServerAddress:   mustGetenv("SERVER_ADDRESS"),
		ShutdownTimeout: mustGetDuration("SHUTDOWN_TIMEOUT"),
		AuthSecret:      mustGetenv("AUTH_SECRET"),
		Database:        loadDatabase(),
	}
}

// LoadDatabase reads only the database settings, for commands that do not
// serve HTTP.
func LoadDatabase() Database {
	_ = godotenv.Load()
	return loadDatabase()
}

// LoadAuthSecret reads only the token signing key.
func LoadAuthSecret() string {
	_ = godotenv.Load()
	return mustGetenv("AUTH_SECRET")
}

func loadDatabase() Database {
	driver := getenvDefault("DB_DRIVER", "sqlite")
	dsn := os.Getenv("DB_DSN")
	if dsn == "" && driver == "sqlite" {
		dsn = "wrongbook.db"
	}
	return Database{Driver: driver, DSN: dsn}
}

func mustGetenv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("config: required environment variable %s is not set", k)
	}
	return v
}

func mustGetDuration(k string) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("config: required environment variable %s is not set", k)
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid duration: %v", k, v, err)
	}
	return d
}

func getenvDefault(k, fallback string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fallback
}
