package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xonecas/annotator/internal/collect"
	"github.com/xonecas/annotator/internal/store"
)

// ImportCmd returns the `annotator import` command.
func ImportCmd() *cobra.Command {
	var (
		id, title string
		opts      collect.Options
	)
	cmd := &cobra.Command{
		Use:   "import <file|dir>",
		Short: "Copy a file, or the text files under a directory, into the document store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			info, err := os.Stat(args[0])
			if err != nil {
				return err
			}
			if !info.IsDir() {
				doc, err := importFile(e.st, args[0], id, title)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), doc.ID)
				return nil
			}

			if id != "" || title != "" {
				return errors.New("--id and --title apply to a single file")
			}
			files, err := collect.Files(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			for _, f := range files {
				doc, err := importFile(e.st, f.Path, "", f.Rel)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), doc.ID)
			}
			log.Info().Int("files", len(files)).Str("dir", args[0]).Msg("imported directory")
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "document id (default: absolute path)")
	cmd.Flags().StringVar(&title, "title", "", "document title (default: file name)")
	cmd.Flags().StringVar(&opts.Pattern, "pattern", "", "only import files whose name or relative path matches this regexp")
	cmd.Flags().IntVar(&opts.MaxFiles, "max-files", 0, "stop after this many files (0 = no limit)")
	return cmd
}

// importFile stores the file at path. A document already stored under
// the id keeps its scroll position; a changed text leaves a revision.
func importFile(st *store.Store, path, id, title string) (store.Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return store.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	if id == "" {
		if id, err = docIDForPath(path); err != nil {
			return store.Document{}, err
		}
	}
	if title == "" {
		title = filepath.Base(path)
	}
	doc := store.Document{ID: id, Title: title, Raw: string(b)}
	if prev, err := st.GetDocument(id); err == nil {
		doc.Scroll = prev.Scroll
	}
	if err := st.PutDocument(doc); err != nil {
		return store.Document{}, err
	}
	return doc, nil
}

// ListCmd returns the `annotator list` command.
func ListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored documents, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			docs, err := e.st.ListDocuments()
			if err != nil {
				return fmt.Errorf("list documents: %w", err)
			}
			return printDocuments(cmd, e.st, docs)
		},
	}
}

// FindCmd returns the `annotator find` command.
func FindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <query>",
		Short: "Find stored documents by keywords",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			docs, err := e.st.FindDocuments(strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("find documents: %w", err)
			}
			return printDocuments(cmd, e.st, docs)
		},
	}
}

// RemoveCmd returns the `annotator rm` command.
func RemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <doc-id>",
		Short: "Delete a stored document and its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.st.DeleteDocument(args[0]); err != nil {
				return fmt.Errorf("delete: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func printDocuments(cmd *cobra.Command, st *store.Store, docs []store.Document) error {
	if len(docs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no documents")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, d := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d revisions\n",
			d.ID, d.Title, d.Updated.Format("2006-01-02 15:04"), st.Revisions(d.ID))
	}
	return tw.Flush()
}
