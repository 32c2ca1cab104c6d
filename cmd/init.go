package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/cueboard/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long:  `Create cueboard.yaml in the current directory with the default settings, commented for editing.`,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	const path = "cueboard.yaml"
	if err := config.WriteDefaultConfig(path); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
