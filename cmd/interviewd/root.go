// interviewd is the automated technical interview daemon. It wires the
// interview engine to an HTTP API and a configured model provider.
package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const app = "interviewd"

var (
	// Used for flags.
	cfgFile     string
	resumesFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "interviewd runs automated technical interviews over an HTTP API",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(func() {
		// local development credentials; absence is fine
		_ = godotenv.Load()
	})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is interviewd.yaml in current directory)")
}
