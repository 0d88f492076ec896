package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xonecas/annotator/internal/annotator"
	"github.com/xonecas/annotator/internal/highlight"
	"github.com/xonecas/annotator/internal/search"
	"github.com/xonecas/annotator/internal/surface"
	"github.com/xonecas/annotator/internal/text"
)

const defaultWidth = 80

// RenderCmd returns the `annotator render` command.
func RenderCmd() *cobra.Command {
	var (
		width int
		mode  string
		color bool
	)
	cmd := &cobra.Command{
		Use:   "render <file|doc-id>",
		Short: "Print a document laid out at a width",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if width < 1 {
				return fmt.Errorf("width must be positive, got %d", width)
			}
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			src, err := loadSource(e.st, args[0])
			if err != nil {
				return err
			}
			if mode == "" {
				mode = e.cfg.UI.Mode
			}
			m, err := text.ParseMode(mode)
			if err != nil {
				return err
			}

			pal := highlight.ThemePalette(e.cfg.UI.ThemeOrDefault())
			g := surface.NewGrid(width, 1, pal.Fg, pal.Bg)
			a := annotator.New(g, src.raw, annotator.Options{
				Name:       src.name(),
				Mode:       m,
				FontColor:  pal.Fg,
				Background: pal.Bg,
				CaretColor: pal.Bg,
			})
			a.OnHighlight(e.st.HighlightLookup(pal))

			// Grow the grid to the whole document.
			rows := max(1, a.Document().NoLines())
			g.Resize(width, rows)
			a.Resize(float64(width), float64(rows))

			out := cmd.OutOrStdout()
			if color {
				fmt.Fprintln(out, g.Render())
				return nil
			}
			fmt.Fprintln(out, strings.Join(g.PlainRows(), "\n"))
			return nil
		},
	}
	cmd.Flags().IntVarP(&width, "width", "w", defaultWidth, "characters per line")
	cmd.Flags().StringVar(&mode, "mode", "", "highlight or raw (default from config)")
	cmd.Flags().BoolVar(&color, "color", false, "draw highlights with ANSI colors")
	return cmd
}

// SearchCmd returns the `annotator search` command.
func SearchCmd() *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "search <file|doc-id> <query>",
		Short: "List the wrapped lines containing a query",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if width < 1 {
				return fmt.Errorf("width must be positive, got %d", width)
			}
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			src, err := loadSource(e.st, args[0])
			if err != nil {
				return err
			}
			q := args[1]
			if n := e.cfg.Search.MinLengthOrDefault(); len([]rune(q)) < n {
				return fmt.Errorf("query %q is shorter than %d characters", q, n)
			}

			t := text.New(src.raw, width)
			hits := search.Search(t, q)
			out := cmd.OutOrStdout()
			for _, o := range hits {
				line := o.Line(t)
				fmt.Fprintf(out, "%d:%d\t%s\n", line+1, o.Start+1, t.Line(line))
			}
			if len(hits) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "no matches for %q\n", q)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&width, "width", "w", defaultWidth, "characters per line")
	return cmd
}
