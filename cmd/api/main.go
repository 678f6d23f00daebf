package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ntask/core/cmd/api/commands"
)

// @title N-TASK Core API
// @version 1.0
// @description Task graph manager with status propagation and a document request approval workflow

// @contact.name N-TASK Support
// @contact.url https://github.com/ntask/core

// @license.name MIT
// @license.url https://github.com/ntask/core/blob/main/LICENSE

// @host localhost:8080
// @BasePath /api/v1

func main() {
	rootCmd := &cobra.Command{
		Use:   "ntask",
		Short: "N-TASK Core API Server",
		Long:  `N-TASK Core serves the task relationship graph and the document request approval workflow behind the N-TASK board.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
