package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/angelmondragon/moments-backend/pkg/config"
	"github.com/angelmondragon/moments-backend/pkg/logger"
	"github.com/angelmondragon/moments-backend/pkg/security"
)

// admin-hash prints an Argon2id hash for MOMENTS_ADMIN_PASSWORD_HASH.
// The password is read from -password or, when omitted, the first line of stdin.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "admin-hash", Output: os.Stderr})

	_ = godotenv.Load()

	password := flag.String("password", "", "admin password to hash (reads stdin when empty)")
	flag.Parse()

	var params config.PasswordConfig
	if err := envconfig.Process(config.EnvPrefix, &params); err != nil {
		logg.Error(ctx, "failed to load password parameters", err)
		os.Exit(1)
	}

	plain := *password
	if plain == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			logg.Error(ctx, "failed to read password from stdin", err)
			os.Exit(1)
		}
		plain = strings.TrimRight(line, "\r\n")
	}
	if plain == "" {
		logg.Error(ctx, "password is required", errors.New("empty password"))
		os.Exit(1)
	}

	hash, err := security.ParamsFromConfig(params).Hash(plain)
	if err != nil {
		logg.Error(ctx, "failed to hash password", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
