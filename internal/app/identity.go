package app

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/yungbote/tenantdesk-backend/internal/identity"
	"github.com/yungbote/tenantdesk-backend/internal/platform/logger"
)

//go:embed default_policies.yaml
var defaultPolicies []byte

// loadPolicies reads POLICY_FILE, or the built-in policies when unset.
func loadPolicies(log *logger.Logger, path string) (*identity.PolicySet, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		log.Info("Using built-in policies...")
		return identity.LoadPolicies(bytes.NewReader(defaultPolicies))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open policy file: %w", err)
	}
	defer f.Close()
	ps, err := identity.LoadPolicies(f)
	if err != nil {
		return nil, fmt.Errorf("load policy file %s: %w", path, err)
	}
	log.Info("Loaded policies", "file", path, "policies", ps.Names())
	return ps, nil
}

func wireTokens(log *logger.Logger, cfg Config, ps *identity.PolicySet) (*identity.Tokens, error) {
	if cfg.JWTSecretKey == defaultJWTSecret {
		log.Warn("JWT_SECRET_KEY is the default; tokens are not secure")
	}
	tokens, err := identity.NewTokens(cfg.JWTSecretKey, cfg.AccessTokenTTL,
		identity.WithIssuer(cfg.JWTIssuer),
		identity.WithTokenPolicies(ps),
	)
	if err != nil {
		return nil, fmt.Errorf("init tokens: %w", err)
	}
	return tokens, nil
}
