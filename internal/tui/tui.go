// Package tui hosts the annotator in a bubbletea program: the document on a
// cell grid, a line-number gutter, a status bar, prompts and pickers.
package tui

import (
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/annotator/internal/annotator"
	"github.com/xonecas/annotator/internal/config"
	"github.com/xonecas/annotator/internal/highlight"
	"github.com/xonecas/annotator/internal/search"
	"github.com/xonecas/annotator/internal/store"
	"github.com/xonecas/annotator/internal/surface"
	"github.com/xonecas/annotator/internal/text"
	"github.com/xonecas/annotator/internal/tui/modal"
)

// Grid size used until the first WindowSizeMsg arrives.
const (
	initialCols = 80
	initialRows = 22
)

// Options configures the TUI.
type Options struct {
	DocID     string
	Title     string
	Raw       string
	Scroll    int // first visible line to restore
	Store     *store.Store
	Config    *config.Config
	Clipboard annotator.Clipboard
}

// docState collects what the annotator reports through its callbacks.
// Model is copied on every Update, so callbacks write here instead.
type docState struct {
	id, title string
	original  string // raw when opened; base of the session diff

	selection annotator.Selection
	scroll    int
	restore   int // line to scroll to once the real size is known; -1 when done

	first, last, total int
	lineStart, noLines int
	changes            int
}

func (d *docState) SetLines(first, last, total int) {
	d.first, d.last, d.total = first, last, total
}

func (d *docState) SetScroll(lineStart, noLines, total int) {
	d.lineStart, d.noLines, d.total = lineStart, noLines, total
}

type promptKind int

const (
	promptNone promptKind = iota
	promptSearch
	promptGoto
)

type pickerKind int

const (
	pickTag pickerKind = iota
	pickUntag
	pickJump
	pickDocument
)

// Model is the application model.
type Model struct {
	width  int
	height int
	layout layout

	grid *surface.Grid
	ann  *annotator.Annotator
	doc  *docState

	store   *store.Store
	cfg     *config.Config
	palette highlight.Palette
	styles  Styles

	// Search
	results    *search.Results
	query      string
	searchFrom text.Coord

	prompt     textinput.Model
	promptKind promptKind

	picker     *modal.Picker
	pickerKind pickerKind
	textView   *modal.TextView

	status    string
	statusErr bool
	statusSeq int

	// Double click detection
	lastClick  time.Time
	lastClickX int
	lastClickY int
}

// New creates the TUI model around one document.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	pal := highlight.ThemePalette(cfg.UI.ThemeOrDefault())

	mode, err := text.ParseMode(cfg.UI.Mode)
	if err != nil {
		log.Warn().Err(err).Msg("ignoring display mode")
	}

	doc := &docState{id: opts.DocID, title: opts.Title, original: opts.Raw, scroll: opts.Scroll, restore: opts.Scroll}
	grid := surface.NewGrid(initialCols, initialRows, pal.Fg, pal.Bg)
	ann := annotator.New(grid, opts.Raw, annotator.Options{
		Name:          opts.DocID,
		Mode:          mode,
		FontColor:     pal.Fg,
		Background:    pal.Bg,
		CaretColor:    pal.Accent,
		SelectColor:   highlight.Normalize(cfg.UI.SelectColor, pal.Select),
		SelectOpacity: cfg.UI.SelectOpacity,
		WheelLines:    cfg.UI.WheelLinesOrDefault(),
		Clipboard:     opts.Clipboard,
	})

	st := opts.Store
	ann.OnHighlight(st.HighlightLookup(pal))
	ann.SetGutter(doc)
	ann.SetScroller(doc)
	ann.OnSelectText(func(sel annotator.Selection) { doc.selection = sel })
	ann.OnScroll(func(line int) { doc.scroll = line })
	ann.OnTextChanged(func(raw string) {
		doc.changes++
		if doc.id == "" {
			return
		}
		st.SaveDocument(store.Document{ID: doc.id, Title: doc.title, Raw: raw, Scroll: doc.scroll})
	})

	prompt := textinput.New()
	prompt.Prompt = ""

	return Model{
		grid:    grid,
		ann:     ann,
		doc:     doc,
		store:   st,
		cfg:     cfg,
		palette: pal,
		styles:  newStyles(pal),
		prompt:  prompt,
	}
}

// Init initializes the TUI (required by BubbleTea).
func (m Model) Init() tea.Cmd {
	return nil
}

// Annotator returns the hosted annotator.
func (m Model) Annotator() *annotator.Annotator { return m.ann }

func (m Model) modalColors() modal.Colors {
	return modal.Colors{
		Fg:      m.palette.Fg,
		Bg:      m.palette.Bg,
		Dim:     m.palette.Muted,
		SelFg:   m.palette.Bg,
		SelBg:   m.palette.Accent,
		Border:  m.palette.Gutter,
		Added:   colorAdded,
		Removed: colorRemoved,
	}
}
