package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ritesshguptaa/recipy-app-api/internal/auth"
	"github.com/ritesshguptaa/recipy-app-api/internal/config"
	"github.com/ritesshguptaa/recipy-app-api/internal/repository"
	"github.com/ritesshguptaa/recipy-app-api/internal/service"
)

type output struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Token string `json:"token,omitempty"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", "", "Superuser email")
		name        = flag.String("name", "", "Display name")
		password    = flag.String("password", os.Getenv("SUPERUSER_PASSWORD"), "Password (defaults to $SUPERUSER_PASSWORD)")
		issueToken  = flag.Bool("token", false, "Also issue an auth token for the new account")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "-email and -password (or SUPERUSER_PASSWORD) are required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := repository.Migrate(ctx, *databaseURL); err != nil {
		fmt.Fprintln(os.Stderr, "migrate database:", err)
		os.Exit(1)
	}

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	// Hash with the same parameters the server verifies with.
	cfg := &config.Config{
		Argon2MemoryKB:    65536,
		Argon2Iterations:  3,
		Argon2Parallelism: 4,
	}
	if loaded, err := config.Load(); err == nil {
		cfg = loaded
	}
	hasher := auth.NewArgon2Hasher(cfg.Argon2Params())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := service.NewUserService(repo, hasher, nil, nil, logger)

	user, err := users.CreateSuperuser(ctx, service.CreateUserInput{
		Email:    *email,
		Password: *password,
		Name:     *name,
	})
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			for field, msgs := range verr.Fields {
				for _, msg := range msgs {
					fmt.Fprintf(os.Stderr, "%s: %s\n", field, msg)
				}
			}
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "create superuser:", err)
		os.Exit(1)
	}

	out := output{Email: user.Email, Name: user.Name}
	if *issueToken {
		tokens := service.NewTokenService(repo, hasher, nil, nil, logger)
		out.Token, err = tokens.Issue(ctx, *email, *password)
		if err != nil {
			fmt.Fprintln(os.Stderr, "issue token:", err)
			os.Exit(1)
		}
	}

	if *format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
		return
	}

	fmt.Printf("Superuser created: %s\n", out.Email)
	if out.Token != "" {
		fmt.Printf("Token: %s\n", out.Token)
	}
}
