// Command quillctl administers a QuillPress deployment: it applies
// migrations, promotes accounts, seeds categories from a fixture file and
// queries a running server through the typed API client.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// NewRootCommand builds the quillctl command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "quillctl",
		Short: "QuillPress administration tool",
		Long: `QuillPress administration tool.

Database commands (migrate, promote, seed) read the same environment
variables as the server. Query commands (login, posts, search) talk to a
running server given by --server.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("server", envOr("QUILLPRESS_URL", "http://localhost:8080"), "server base URL")
	rootCmd.PersistentFlags().String("token", os.Getenv("QUILLPRESS_TOKEN"), "bearer token for authenticated calls")

	rootCmd.AddCommand(NewMigrateCommand())
	rootCmd.AddCommand(NewPromoteCommand())
	rootCmd.AddCommand(NewSeedCommand())
	rootCmd.AddCommand(NewLoginCommand())
	rootCmd.AddCommand(NewPostsCommand())
	rootCmd.AddCommand(NewSearchCommand())

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
