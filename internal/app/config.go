package app

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"
)

type HeaderConfig struct {
	Name  string `toml:"name"`
	Value string `toml:"value"`
}

type Config struct {
	Server struct {
		Port       string `toml:"port"`
		EnableAuth bool   `toml:"enable_auth"`
	} `toml:"server"`

	Auth struct {
		RedisURL         string `toml:"redis_url"`
		TokenHeader      string `toml:"token_header"`
		TokenKeyTemplate string `toml:"token_key_template"`
	} `toml:"auth"`

	API struct {
		ActorIDHeader   string         `toml:"actor_id_header"`
		ActorRoleHeader string         `toml:"actor_role_header"`
		RequiredHeaders []HeaderConfig `toml:"required_headers"`
	} `toml:"api"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	Export struct {
		Cron      string `toml:"cron"`
		OutputDir string `toml:"output_dir"`
	} `toml:"export"`
}

func LoadConfig(path string) (*Config, error) {
	// .env values feed the ${VAR} references inside the TOML, missing file
	// is fine
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	config.Database.DSN = os.ExpandEnv(config.Database.DSN)
	config.Auth.RedisURL = os.ExpandEnv(config.Auth.RedisURL)

	if config.Server.Port == "" {
		return nil, fmt.Errorf("Server port is not specified in config, use a value like :9999")
	}
	if config.Database.DSN == "" {
		return nil, fmt.Errorf("Database DSN is not specified in config")
	}
	if config.API.ActorIDHeader == "" {
		config.API.ActorIDHeader = "X-Actor-ID"
	}
	if config.Auth.TokenHeader == "" {
		config.Auth.TokenHeader = "Authorization"
	}
	if config.Auth.TokenKeyTemplate == "" {
		config.Auth.TokenKeyTemplate = "auth:{role}:{actor}"
	}
	if config.API.ActorRoleHeader == "" {
		config.API.ActorRoleHeader = "X-Actor-Role"
	}
	if config.Database.MigrationsDir == "" {
		config.Database.MigrationsDir = "./migrations"
	}

	logger.Debug.Printf("Loaded config for server on %s, auth enabled: %v",
		config.Server.Port, config.Server.EnableAuth)

	return &config, nil
}
