package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/zjrosen/cueboard/internal/board"
	"github.com/zjrosen/cueboard/internal/library"
)

var soundsCmd = &cobra.Command{
	Use:   "sounds",
	Short: "List the sounds on the board",
	Long:  `Scan the sound library and print every cue in board order, with its display name and file.`,
	RunE:  runSounds,
}

func init() {
	rootCmd.AddCommand(soundsCmd)
}

func runSounds(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = loadConfig()
	if err != nil {
		return err
	}

	libraryDir, err := filepath.Abs(cfg.LibraryDir)
	if err != nil {
		return fmt.Errorf("resolving library dir: %w", err)
	}
	statePath, err := filepath.Abs(cfg.StateFile)
	if err != nil {
		return fmt.Errorf("resolving state file: %w", err)
	}

	entries, err := library.Scan(libraryDir)
	if err != nil {
		return fmt.Errorf("scanning library: %w", err)
	}
	state := board.Load(statePath, entries)

	fmt.Printf("Library (%s):\n", libraryDir)
	cues := state.Cues()
	if len(cues) == 0 {
		fmt.Println("  (no sounds found)")
		return nil
	}

	maxLen := lo.Max(lo.Map(cues, func(c board.Cue, _ int) int {
		return len(c.DisplayName)
	}))
	for _, c := range cues {
		fmt.Printf("  %-*s  %s\n", maxLen, c.DisplayName, c.ID)
	}

	fmt.Println()
	fmt.Printf("%d sounds, master volume %d%%\n", len(cues), state.MasterVolume())
	return nil
}
