// Package cmd holds the annotator command line.
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xonecas/annotator/internal/annotation"
	"github.com/xonecas/annotator/internal/config"
	"github.com/xonecas/annotator/internal/store"
)

// Root returns the `annotator` command tree.
func Root() *cobra.Command {
	root := &cobra.Command{
		Use:           "annotator",
		Short:         "Tag spans of text with inline markup",
		Long:          "annotator: browse, search and tag documents with <tag>…</tag> markup, in a terminal UI or headlessly.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "config file (default ~/.config/annotator/config.toml)")
	root.PersistentFlags().String("db", "", "document store path (overrides store.path)")

	root.AddCommand(OpenCmd())
	root.AddCommand(RenderCmd())
	root.AddCommand(SearchCmd())
	root.AddCommand(TagCmd())
	root.AddCommand(UntagCmd())
	root.AddCommand(TagsCmd())
	root.AddCommand(ImportCmd())
	root.AddCommand(ListCmd())
	root.AddCommand(FindCmd())
	root.AddCommand(RemoveCmd())
	root.AddCommand(EntityCmd())
	return root
}

// env is what every command runs against.
type env struct {
	cfg *config.Config
	st  *store.Store
}

func (e *env) close() {
	if err := e.st.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close store")
	}
}

// openEnv loads the config and opens the store named by the persistent
// flags. Logs go to the command's stderr.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	setupLogging(cfg, zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true})
	return openStore(cfg)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Store.Path = db
	}
	return cfg, nil
}

// openStore opens the document store and seeds it with the configured
// entities.
func openStore(cfg *config.Config) (*env, error) {
	path, err := cfg.StorePath()
	if err != nil {
		return nil, fmt.Errorf("store path: %w", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	for _, e := range cfg.Entities {
		err := st.PutEntity(store.Entity{
			ID:      e.ID,
			Label:   e.Label,
			Mode:    annotation.ParseMode(e.Mode),
			Color:   e.Color,
			Opacity: e.Opacity,
		})
		if err != nil {
			log.Warn().Err(err).Str("entity", e.ID).Msg("failed to seed entity")
		}
	}
	return &env{cfg: cfg, st: st}, nil
}

func setupLogging(cfg *config.Config, w io.Writer) {
	zerolog.SetGlobalLevel(cfg.Log.LevelOrDefault())
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// setupFileLogging sends logs to the configured file, or annotator.log in
// the data directory. The terminal belongs to the UI.
func setupFileLogging(cfg *config.Config) (*os.File, error) {
	path := cfg.Log.File
	if path == "" {
		dir, err := config.EnsureDataDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "annotator.log")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	setupLogging(cfg, f)
	return f, nil
}
