// Command optoken mints an operator JWT for the admin endpoints, signed with
// the same secret and issuer the API validates against.
package main

import (
	"fmt"
	"os"

	"payment-event-pipeline/config"
	"payment-event-pipeline/internal/core/domain"
	"payment-event-pipeline/internal/service"

	"github.com/spf13/pflag"
)

func main() {
	operator := pflag.StringP("operator", "o", "", "operator id written to the token subject (required)")
	role := pflag.String("role", domain.RoleOperator, "role claim")
	configPath := pflag.StringP("config", "c", "", "config file path (defaults to ./config.yaml and PEP_ env vars)")
	pflag.Parse()

	if *operator == "" {
		fmt.Fprintln(os.Stderr, "optoken: --operator is required")
		pflag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "optoken: load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.JWT.Secret == "" {
		fmt.Fprintln(os.Stderr, "optoken: jwt.secret is not set")
		os.Exit(1)
	}

	tokens := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	token, expiresAt, err := tokens.Generate(*operator, *role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "optoken: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "expires %s\n", expiresAt.UTC().Format("2006-01-02T15:04:05Z"))
	fmt.Println(token)
}
