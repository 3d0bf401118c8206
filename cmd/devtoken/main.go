// Command devtoken mints a bearer token for local development.
package main

import (
	"flag"
	"fmt"
	"os"

	"ledgerbook/internal/config"
	"ledgerbook/internal/middleware"
)

func main() {
	owner := flag.String("owner", "", "owner id to embed in the token")
	flag.Parse()

	if *owner == "" {
		fmt.Fprintln(os.Stderr, "usage: devtoken -owner <id>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	token, err := middleware.GenerateToken(*owner, []byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTExpirationDur)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
