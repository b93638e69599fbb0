package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"go-gin-marketplace/internal/core/auth"
	"go-gin-marketplace/internal/core/config"
)

// devtoken 给 auth.mode=jwt 的本地环境签发 Bearer 令牌
func main() {
	uid := pflag.StringP("uid", "u", "", "user uid the token is issued for (required)")
	email := pflag.StringP("email", "e", "", "optional email claim")
	ttl := pflag.Duration("ttl", 0, "token lifetime, defaults to auth.jwt.tokenTTLMin")
	pflag.Parse()

	if *uid == "" {
		fmt.Fprintln(os.Stderr, "devtoken: --uid is required")
		pflag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if cfg.Auth.JWT.Secret == "" {
		fmt.Fprintln(os.Stderr, "devtoken: auth.jwt.secret is empty (set APP_AUTH_JWT_SECRET)")
		os.Exit(1)
	}

	lifetime := *ttl
	if lifetime <= 0 {
		lifetime = time.Duration(cfg.Auth.JWT.TokenTTLMin) * time.Minute
	}
	j := &auth.JWTer{
		Secret: []byte(cfg.Auth.JWT.Secret),
		Issuer: cfg.Auth.JWT.Issuer,
		TTL:    lifetime,
	}
	tok, err := j.Issue(*uid, *email)
	if err != nil {
		fmt.Fprintln(os.Stderr, "issue token:", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
