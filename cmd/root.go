// Package cmd wires the CLI: flags, config loading and the TUI lifecycle.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/cueboard/internal/audio"
	"github.com/zjrosen/cueboard/internal/board"
	"github.com/zjrosen/cueboard/internal/config"
	"github.com/zjrosen/cueboard/internal/library"
	"github.com/zjrosen/cueboard/internal/log"
	"github.com/zjrosen/cueboard/internal/ui/app"
)

var (
	cfg config.Config

	cfgFile     string
	libraryFlag string
	stateFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "cueboard",
	Short: "A terminal soundboard for live storytelling",
	Long: `Cueboard is a terminal soundboard for live storytelling sessions.

It scans a directory of audio files into a grid of playable cues, lets you
write a narrative with inline sound markers, and plays any number of cues
concurrently while you read.`,
	SilenceUsage: true,
	RunE:         runRoot,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./cueboard.yaml, then ~/.config/cueboard/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&libraryFlag, "library", "", "sound library directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&stateFlag, "state", "", "state file path (overrides config)")
}

// loadConfig layers defaults, an optional YAML config file and flag
// overrides into one Config.
func loadConfig() (config.Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("cueboard")
		v.AddConfigPath(".")
		if configDir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(configDir, "cueboard"))
		}
	}

	defaults := config.Defaults()
	v.SetDefault("library_dir", defaults.LibraryDir)
	v.SetDefault("state_file", defaults.StateFile)
	v.SetDefault("auto_refresh", defaults.AutoRefresh)
	v.SetDefault("auto_refresh_debounce", defaults.AutoRefreshDebounce)
	v.SetDefault("ui.columns", defaults.UI.Columns)
	v.SetDefault("ui.show_status_bar", defaults.UI.ShowStatusBar)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return config.Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var c config.Config
	if err := v.Unmarshal(&c); err != nil {
		return config.Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if libraryFlag != "" {
		c.LibraryDir = libraryFlag
	}
	if stateFlag != "" {
		c.StateFile = stateFlag
	}

	if err := c.Validate(); err != nil {
		return config.Config{}, err
	}
	return c, nil
}

// logPath returns the log file location under the user cache dir.
func logPath() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "cueboard.log")
	}
	return filepath.Join(cacheDir, "cueboard", "cueboard.log")
}

func runRoot(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = loadConfig()
	if err != nil {
		return err
	}

	closeLog, err := log.Init(logPath())
	if err != nil {
		return fmt.Errorf("initializing log: %w", err)
	}
	defer closeLog()

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
	log.Info(log.CatApp, "starting", "library", libraryDir, "cues", state.Len(), "audio", audio.AudioAvailable)

	var program *tea.Program
	engine := audio.NewEngine(func(id string, playing bool) {
		if program != nil {
			program.Send(app.PlaybackMsg{ID: id, Playing: playing})
		}
	})
	defer engine.Close()
	engine.SetMasterVolume(state.MasterVolume())

	program = tea.NewProgram(
		app.New(cfg, libraryDir, statePath, state, engine),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if cfg.AutoRefresh {
		watcher, werr := library.NewWatcher(libraryDir, cfg.AutoRefreshDebounce, func() {
			program.Send(app.LibraryChangedMsg{})
		})
		if werr != nil {
			log.ErrorErr(log.CatLibrary, "library watch unavailable", werr, "dir", libraryDir)
		} else {
			defer func() { _ = watcher.Close() }()
		}
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}

	engine.StopAll()
	log.Info(log.CatApp, "shutdown complete")
	return nil
}
