package main

import (
	"fmt"
	"time"

	"github.com/artpar/modhost/adapters/auth"
	"github.com/artpar/modhost/adapters/clock"
	"github.com/artpar/modhost/adapters/hasher"
	"github.com/artpar/modhost/config"
	"github.com/spf13/cobra"
)

var hashTokenCmd = &cobra.Command{
	Use:   "hash-token [token]",
	Short: "Hash an admin token for auth.admin_token_hash",
	Long: `Hash an admin token with bcrypt.

Without an argument a random token is generated and printed once. Put the
hash in auth.admin_token_hash (or MODHOST_ADMIN_TOKEN_HASH) and send the
token as "Authorization: Bearer <token>".

Examples:
  modhost hash-token
  modhost hash-token my-long-random-token`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHashToken,
}

var issueTokenCmd = &cobra.Command{
	Use:   "issue-token",
	Short: "Issue a session token signed with auth.jwt_secret",
	Args:  cobra.NoArgs,
	RunE:  runIssueToken,
}

var (
	hashTokenCost     int
	issueTokenSubject string
)

func init() {
	rootCmd.AddCommand(hashTokenCmd)
	rootCmd.AddCommand(issueTokenCmd)

	hashTokenCmd.Flags().IntVar(&hashTokenCost, "cost", 0, "bcrypt cost (default: auth.bcrypt_cost)")
	issueTokenCmd.Flags().StringVar(&issueTokenSubject, "subject", "admin", "token subject")
}

func runHashToken(cmd *cobra.Command, args []string) error {
	cost := hashTokenCost
	if cost == 0 {
		cfg, err := config.LoadWithFallback(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		cost = cfg.Auth.BcryptCost
	}

	out := cmd.OutOrStdout()
	token := ""
	if len(args) == 1 {
		token = args[0]
	} else {
		token = auth.GenerateSecret()
		fmt.Fprintf(out, "token: %s\n", token)
	}

	hash, err := hasher.NewBcrypt(cost).Hash(token)
	if err != nil {
		return fmt.Errorf("hash token: %w", err)
	}
	fmt.Fprintf(out, "hash:  %s\n", hash)
	return nil
}

func runIssueToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is not configured")
	}

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, clock.Real{})
	token, expires, err := tokens.Issue(issueTokenSubject, "admin")
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, token)
	fmt.Fprintf(out, "expires: %s\n", expires.Format(time.RFC3339))
	return nil
}
