// Command devtoken prints a signed bearer token for local development,
// using the same JWT_SECRET_KEY, JWT_ISSUER and ACCESS_TOKEN_TTL as the
// server.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yungbote/tenantdesk-backend/internal/identity"
	"github.com/yungbote/tenantdesk-backend/internal/platform/envutil"
)

func main() {
	var user, tenants, roles, claims string
	flag.StringVar(&user, "user", "", "user id (required)")
	flag.StringVar(&tenants, "tenants", "", "comma separated tenant ids")
	flag.StringVar(&roles, "roles", "", "comma separated roles, e.g. Manager,TenantOwner")
	flag.StringVar(&claims, "claims", "", "comma separated key=value claims")
	flag.Parse()

	if strings.TrimSpace(user) == "" {
		fmt.Fprintln(os.Stderr, "Error: -user is required")
		flag.Usage()
		os.Exit(2)
	}

	tokens, err := identity.NewTokens(
		envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		envutil.Duration("ACCESS_TOKEN_TTL", time.Hour),
		identity.WithIssuer(envutil.String("JWT_ISSUER", "tenantdesk")),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	p := identity.NewPrincipal(user,
		identity.InTenants(splitList(tenants)...),
		identity.WithRoles(splitList(roles)...),
		identity.WithClaims(parseClaims(claims)),
	)
	signed, exp, err := tokens.Issue(p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "expires %s\n", exp.UTC().Format(time.RFC3339))
	fmt.Println(signed)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseClaims(raw string) map[string]string {
	out := map[string]string{}
	for _, part := range splitList(raw) {
		k, v, ok := strings.Cut(part, "=")
		if k = strings.TrimSpace(k); ok && k != "" {
			out[k] = strings.TrimSpace(v)
		}
	}
	return out
}
