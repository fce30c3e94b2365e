package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Port string
}

type GroupsConfig struct {
	URL      string
	Token    string
	Username string
}

type Config struct {
	Server ServerConfig
	Groups GroupsConfig
	Env    string
}

func LoadConfig() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Groups: GroupsConfig{
			URL:      getEnv("GROUPS_URL", "http://localhost:8080"),
			Token:    getEnv("GROUPS_TOKEN", ""),
			Username: getEnv("GROUPS_USER", ""),
		},
		Env: getEnv("ENV", "prod"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
