package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Session SessionConfig
	Rooms   RoomConfig
	Sweep   SweepConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type SessionConfig struct {
	Secret    []byte
	ExpiresIn time.Duration
}

type RoomConfig struct {
	ContentRoomTTL    time.Duration
	StandaloneRoomTTL time.Duration
}

type SweepConfig struct {
	Interval time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:         getEnvOrDefault("PORT", ":8080"),
			ReadTimeout:  getDurationOrDefault("READ_TIMEOUT", "15s"),
			WriteTimeout: getDurationOrDefault("WRITE_TIMEOUT", "15s"),
		},
		Session: SessionConfig{
			Secret:    []byte(getEnvOrFatal("SESSION_SECRET")),
			ExpiresIn: getDurationOrDefault("SESSION_EXPIRES_IN", "24h"),
		},
		Rooms: RoomConfig{
			ContentRoomTTL:    getDurationOrDefault("CONTENT_ROOM_TTL", "30m"),
			StandaloneRoomTTL: getDurationOrDefault("STANDALONE_ROOM_TTL", "2h"),
		},
		Sweep: SweepConfig{
			Interval: getDurationOrDefault("SWEEP_INTERVAL", "60s"),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrFatal(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("%s environment variable is required", key)
	}
	return value
}

func getDurationOrDefault(key, defaultValue string) time.Duration {
	value := getEnvOrDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("Invalid duration for %s: %v", key, err)
	}
	return duration
}
