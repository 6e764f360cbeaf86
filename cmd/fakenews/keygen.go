package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thinkscotty/fakenews/internal/auth"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an API key for the HTTP server",
	Long: `Generate a random API key and its bcrypt hash.

Give the key to API clients and put the hash in server.api_key_hash so the
plaintext key never has to be stored in the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := auth.GenerateKey()
		if err != nil {
			return err
		}
		hash, err := auth.HashKey(key)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "API key:      %s\n", key)
		fmt.Fprintf(out, "api_key_hash: %s\n", hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}
