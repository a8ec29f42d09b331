package app

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shrimpsizemoose/upprop/internal/account"
	"github.com/shrimpsizemoose/upprop/internal/roster"
	"github.com/shrimpsizemoose/upprop/internal/store"
)

type Service struct {
	Config   *Config
	Store    store.RosterStore
	Roster   *roster.Service
	Accounts *account.Provisioner
	Auth     *Auth
	Tokens   *TokenManager
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	st, err := NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	auth, err := NewAuth(config)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to init auth: %w", err)
	}

	accounts := account.NewProvisioner(st)

	svc := &Service{
		Config:   config,
		Store:    st,
		Roster:   roster.NewService(st, accounts),
		Accounts: accounts,
		Auth:     auth,
	}
	if auth.Redis() != nil {
		svc.Tokens = NewTokenManager(auth.Redis())
	}
	return svc, nil
}

// ResolveActor builds the explicit actor context for a request from the
// identity headers, checking the bearer token when auth is enabled. With
// auth disabled the headers are trusted as-is, which keeps local runs and
// tests free of redis.
func (s *Service) ResolveActor(r *http.Request) (roster.Actor, error) {
	roleStr := r.Header.Get(s.Config.API.ActorRoleHeader)
	idStr := r.Header.Get(s.Config.API.ActorIDHeader)
	if roleStr == "" || idStr == "" {
		return roster.Actor{}, fmt.Errorf("missing actor identity headers")
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return roster.Actor{}, fmt.Errorf("bad actor id %q", idStr)
	}

	role := roster.Role(roleStr)
	switch role {
	case roster.RoleAdmin, roster.RoleTeacher, roster.RoleStudent:
	default:
		return roster.Actor{}, fmt.Errorf("unknown role %q", roleStr)
	}

	if s.Config.Server.EnableAuth {
		authHeader := r.Header.Get(s.Auth.tokenHeader)
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return roster.Actor{}, fmt.Errorf("invalid authorization header format")
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if err := s.Auth.ValidateToken(r.Context(), roleStr, idStr, token); err != nil {
			return roster.Actor{}, err
		}
	}

	return roster.Actor{ID: id, Role: role}, nil
}

func (s *Service) ValidateHeaders(headers map[string][]string) bool {
	for _, required := range s.Config.API.RequiredHeaders {
		value := headers[http.CanonicalHeaderKey(required.Name)]
		if len(value) == 0 || !strings.EqualFold(value[0], required.Value) {
			return false
		}
	}
	return true
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Auth.Close(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
