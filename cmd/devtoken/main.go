// Command devtoken mints a bearer token for local development and manual
// testing of the service log API.
//
//	JWT_SECRET=dev go run ./cmd/devtoken -sub u1 -role user -ttl 8h
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pkordes/servicelog/internal/auth"
	"github.com/pkordes/servicelog/internal/domain"
)

func main() {
	sub := flag.String("sub", "", "actor id placed in the subject claim (required)")
	role := flag.String("role", string(domain.RoleUser), "actor role: user, operator or admin")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		slog.Error("JWT_SECRET is not set")
		os.Exit(1)
	}

	token, err := auth.NewJWTGate(secret).Issue(domain.Actor{ID: *sub, Role: domain.Role(*role)}, *ttl)
	if err != nil {
		slog.Error("could not issue token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
