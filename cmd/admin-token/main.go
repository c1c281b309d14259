package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/angelmondragon/prices-backend/pkg/auth"
	"github.com/angelmondragon/prices-backend/pkg/config"
	"github.com/angelmondragon/prices-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// admin-token mints a bearer token for the admin price endpoints.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "admin-token", Format: logger.FormatConsole, Output: os.Stderr})

	_ = godotenv.Load()

	subject := flag.String("subject", "", "operator identity recorded in the token (required)")
	roleFlag := flag.String("role", string(auth.RoleAdmin), "token role: admin|reader")
	flag.Parse()

	if *subject == "" {
		fmt.Fprintln(os.Stderr, "missing -subject")
		os.Exit(1)
	}
	role, ok := auth.ParseRole(*roleFlag)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown -role %q\n", *roleFlag)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	token, err := auth.MintAccessToken(cfg.JWT, time.Now(), auth.AccessTokenPayload{
		Subject: *subject,
		Role:    role,
		JTI:     uuid.NewString(),
	})
	if err != nil {
		logg.Error(ctx, "failed to mint token", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{"subject": *subject, "role": string(role), "ttl_minutes": cfg.JWT.ExpirationMinutes})
	logg.Info(ctx, "token minted")
	fmt.Println(token)
}
