package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/classic-spotlight/internal/utils"
)

var (
	flagTokenSubject string
	flagTokenRole    string
	flagTokenTTL     time.Duration
	flagTokenSecret  string
	flagKeyBytes     int
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a service JWT for an internal caller",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagTokenSubject == "" {
			return errors.New("--subject is required")
		}
		if flagTokenRole != utils.RoleScheduler && flagTokenRole != utils.RoleAdmin {
			return fmt.Errorf("--role must be %s or %s", utils.RoleScheduler, utils.RoleAdmin)
		}
		tok, err := utils.NewServiceToken(flagTokenSecret, flagTokenSubject, flagTokenRole, flagTokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok.Token)
		fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", tok.Exp.Format(time.RFC3339))
		return nil
	},
}

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Generate an internal API key and its bcrypt hash",
	Long: `Generate a random internal API key.

Give the key to callers (x-internal-api-key header) and set the hash as
INTERNAL_API_KEY_BCRYPT so the plaintext never sits in the server's environment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := utils.NewAPIKey(flagKeyBytes)
		if err != nil {
			return err
		}
		hash, err := utils.HashKey(key, bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "INTERNAL_API_KEY=%s\nINTERNAL_API_KEY_BCRYPT=%s\n", key, hash)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&flagTokenSubject, "subject", "", "caller name stored in the sub claim")
	tokenCmd.Flags().StringVar(&flagTokenRole, "role", utils.RoleScheduler, "SCHEDULER or ADMIN")
	tokenCmd.Flags().DurationVar(&flagTokenTTL, "ttl", 720*time.Hour, "token lifetime")
	tokenCmd.Flags().StringVar(&flagTokenSecret, "secret", os.Getenv("JWT_SECRET"), "signing secret (defaults to JWT_SECRET)")

	keyCmd.Flags().IntVar(&flagKeyBytes, "bytes", 32, "random bytes in the key")
}
