// internal/app/auth.go
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/shrimpsizemoose/trekker/logger"
)

type Auth struct {
	enabled     bool
	redis       *redis.Client
	keyTemplate string
	tokenHeader string
}

func NewAuth(config *Config) (*Auth, error) {
	if !config.Server.EnableAuth {
		return &Auth{enabled: false}, nil
	}

	opt, err := redis.ParseURL(config.Auth.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Auth{
		enabled:     true,
		redis:       client,
		keyTemplate: config.Auth.TokenKeyTemplate,
		tokenHeader: config.Auth.TokenHeader,
	}, nil
}

func (a *Auth) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

// Redis returns the underlying client for token management, nil when auth
// is disabled.
func (a *Auth) Redis() *redis.Client {
	return a.redis
}

// ValidateToken checks that the presented token matches the one stored for
// the actor and that the stored role agrees with the claimed one.
func (a *Auth) ValidateToken(ctx context.Context, role, actorID, token string) error {
	if !a.enabled {
		return nil
	}

	key := strings.NewReplacer(
		"{role}", role,
		"{actor}", actorID,
	).Replace(a.keyTemplate)

	fields, err := a.redis.HGetAll(ctx, key).Result()
	if err == redis.Nil || len(fields) == 0 {
		logger.Debug.Printf("Token not found for key: %s", key)
		return fmt.Errorf("token not found")
	}
	if err != nil {
		logger.Debug.Printf("Redis error: %v", err)
		return fmt.Errorf("redis error: %w", err)
	}

	if fields["token"] != token {
		logger.Debug.Printf("Token mismatch for %s/%s and what's found in %s", role, actorID, key)
		return fmt.Errorf("invalid token")
	}
	if fields["role"] != "" && fields["role"] != role {
		logger.Debug.Printf("Role mismatch for %s/%s: token was issued for %s", role, actorID, fields["role"])
		return fmt.Errorf("invalid token")
	}

	return nil
}
