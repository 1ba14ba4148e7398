package main

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/tagsearch/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	return a.Run(cmd.Context())
}
