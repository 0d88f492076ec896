package cmd

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/xonecas/annotator/internal/annotation"
	"github.com/xonecas/annotator/internal/store"
	"github.com/xonecas/annotator/internal/text"
	"github.com/xonecas/annotator/internal/textdiff"
)

// wideLine keeps every segment on one line so coordinates are plain
// offsets within a segment.
const wideLine = 1 << 20

// TagCmd returns the `annotator tag` command.
func TagCmd() *cobra.Command {
	var (
		rf   rangeFlags
		diff bool
	)
	cmd := &cobra.Command{
		Use:   "tag <file|doc-id> <tag>",
		Short: "Wrap a range of a document in a tag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag := args[1]
			if !text.IsTagID(tag) {
				return fmt.Errorf("%w: %q", annotation.ErrInvalidTag, tag)
			}
			return editSource(cmd, args[0], diff, func(t *text.Text) error {
				r, err := rf.resolve(t)
				if err != nil {
					return err
				}
				return annotation.WrapRangeWithTag(t, r, tag)
			})
		},
	}
	rf.register(cmd)
	cmd.Flags().BoolVar(&diff, "diff", false, "print the change as a unified diff instead of saving it")
	return cmd
}

// UntagCmd returns the `annotator untag` command.
func UntagCmd() *cobra.Command {
	var (
		rf   rangeFlags
		all  bool
		diff bool
	)
	cmd := &cobra.Command{
		Use:   "untag <file|doc-id> <tag>",
		Short: "Remove a tag from a range, or every occurrence with --all",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag := args[1]
			if all == rf.set() {
				return errors.New("give exactly one of --all, --match or --range")
			}
			return editSource(cmd, args[0], diff, func(t *text.Text) error {
				if all {
					if annotation.RemoveAllTags(t, tag) == 0 {
						return fmt.Errorf("no %s tags", tag)
					}
					return nil
				}
				r, err := rf.resolve(t)
				if err != nil {
					return err
				}
				if !annotation.RemoveTagFromRange(t, r, tag) {
					return fmt.Errorf("no %s tag over %d:%d", tag, r.Start, r.End)
				}
				return nil
			})
		},
	}
	rf.register(cmd)
	cmd.Flags().BoolVar(&all, "all", false, "remove every occurrence of the tag")
	cmd.Flags().BoolVar(&diff, "diff", false, "print the change as a unified diff instead of saving it")
	return cmd
}

// editSource applies edit to a document and saves it, or prints the diff
// when dryRun is set.
func editSource(cmd *cobra.Command, arg string, dryRun bool, edit func(*text.Text) error) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	src, err := loadSource(e.st, arg)
	if err != nil {
		return err
	}
	t := text.New(src.raw, wideLine)
	if err := edit(t); err != nil {
		return err
	}

	after := t.Value()
	diff := textdiff.Unified(src.name(), src.raw, after)
	if dryRun {
		fmt.Fprint(cmd.OutOrStdout(), diff)
		return nil
	}
	if err := src.save(e.st, after); err != nil {
		return fmt.Errorf("save %s: %w", src.name(), err)
	}
	added, removed := textdiff.Stat(diff)
	log.Debug().Str("doc", src.name()).Int("added", added).Int("removed", removed).Msg("document changed")
	fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", src.name())
	return nil
}

// tagListing is the YAML shape of `annotator tags`.
type tagListing struct {
	Tag         string          `yaml:"tag"`
	Label       string          `yaml:"label,omitempty"`
	Occurrences []tagOccurrence `yaml:"occurrences"`
}

type tagOccurrence struct {
	Start int    `yaml:"start"`
	End   int    `yaml:"end"`
	Text  string `yaml:"text"`
}

// TagsCmd returns the `annotator tags` command.
func TagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags <file|doc-id>",
		Short: "List the tags of a document as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			src, err := loadSource(e.st, args[0])
			if err != nil {
				return err
			}
			listing := listTags(e.st, text.New(src.raw, wideLine))

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(listing); err != nil {
				return fmt.Errorf("encode tags: %w", err)
			}
			return enc.Close()
		},
	}
}

func listTags(st *store.Store, t *text.Text) []tagListing {
	listing := []tagListing{}
	for _, tag := range annotation.Tags(t) {
		l := tagListing{Tag: tag, Occurrences: []tagOccurrence{}}
		if ent, err := st.Entity(tag); err == nil {
			l.Label = ent.Label
		}
		for _, occ := range annotation.Occurrences(t, tag) {
			start := t.IndexForCoordinate(occ[0], false)
			o := tagOccurrence{Start: start, End: start}
			if !occ[1].Less(occ[0]) {
				o.End = t.IndexForCoordinate(occ[1], true)
				o.Text = t.RangeText(occ[0], occ[1])
			}
			l.Occurrences = append(l.Occurrences, o)
		}
		listing = append(listing, l)
	}
	return listing
}
