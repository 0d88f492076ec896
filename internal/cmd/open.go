package cmd

import (
	"errors"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xonecas/annotator/internal/clipboard"
	"github.com/xonecas/annotator/internal/store"
	"github.com/xonecas/annotator/internal/tui"
)

// OpenCmd returns the `annotator open` command.
func OpenCmd() *cobra.Command {
	var reload bool
	cmd := &cobra.Command{
		Use:   "open [file|doc-id]",
		Short: "Open a document in the terminal UI (default: the most recent one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logFile, err := setupFileLogging(cfg)
			if err != nil {
				return err
			}
			defer logFile.Close()

			e, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer e.close()

			doc, err := resolveOpen(e.st, args, reload)
			if err != nil {
				return err
			}
			log.Info().Str("doc", doc.ID).Msg("opening document")

			m := tui.New(tui.Options{
				DocID:     doc.ID,
				Title:     doc.Title,
				Raw:       doc.Raw,
				Scroll:    doc.Scroll,
				Store:     e.st,
				Config:    cfg,
				Clipboard: clipboard.System{},
			})
			p := tea.NewProgram(m, tea.WithFilter(tui.MouseEventFilter))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("tui error: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&reload, "reload", false, "re-import the file even when it is already stored")
	return cmd
}

// resolveOpen picks the document to open. A file is imported the first
// time; afterwards the stored copy, with its tags and scroll position,
// wins unless reload is set.
func resolveOpen(st *store.Store, args []string, reload bool) (store.Document, error) {
	if len(args) == 0 {
		docs, err := st.ListDocuments()
		if err != nil {
			return store.Document{}, err
		}
		if len(docs) == 0 {
			return store.Document{}, errors.New("no stored documents; pass a file to open")
		}
		return st.GetDocument(docs[0].ID)
	}

	arg := args[0]
	info, err := os.Stat(arg)
	if err != nil || info.IsDir() {
		return st.GetDocument(arg)
	}
	id, err := docIDForPath(arg)
	if err != nil {
		return store.Document{}, err
	}
	if !reload {
		if doc, err := st.GetDocument(id); err == nil {
			return doc, nil
		}
	}
	if _, err := importFile(st, arg, id, ""); err != nil {
		return store.Document{}, err
	}
	return st.GetDocument(id)
}
