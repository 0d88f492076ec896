package tui

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/annotator/internal/annotation"
	"github.com/xonecas/annotator/internal/annotator"
	"github.com/xonecas/annotator/internal/store"
	"github.com/xonecas/annotator/internal/text"
	"github.com/xonecas/annotator/internal/textdiff"
	"github.com/xonecas/annotator/internal/tui/modal"
)

// filterItems keeps the items whose name or description contains query.
func filterItems(items []modal.Item, query string) []modal.Item {
	if query == "" {
		return items
	}
	q := strings.ToLower(query)
	var filtered []modal.Item
	for _, item := range items {
		name := strings.ToLower(item.Name)
		desc := strings.ToLower(item.Desc)
		if strings.Contains(name, q) || strings.Contains(desc, q) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

func (m *Model) openPicker(kind pickerKind, title, prompt string, searchFn modal.SearchFunc) {
	p := modal.NewPicker(searchFn, prompt, m.modalColors())
	p.Title = title
	p.AllowFree = kind == pickTag
	m.picker = &p
	m.pickerKind = kind
}

// openTagPicker offers the known entities and the tags already in the
// document. A typed id that is not listed creates a new tag.
func (m *Model) openTagPicker() tea.Cmd {
	if m.doc.selection.Text == "" {
		return m.setError(annotator.ErrNoSelection)
	}
	seen := make(map[string]bool)
	var items []modal.Item
	entities, err := m.store.Entities()
	if err != nil {
		log.Warn().Err(err).Msg("failed to list entities")
	}
	for _, e := range entities {
		seen[e.ID] = true
		items = append(items, modal.Item{ID: e.ID, Name: e.ID, Desc: e.Label})
	}
	for _, tag := range annotation.Tags(m.ann.Document()) {
		if !seen[tag] {
			items = append(items, modal.Item{ID: tag, Name: tag, Desc: "in document"})
		}
	}
	m.openPicker(pickTag, "Tag "+strconv.Quote(ellipsize(m.doc.selection.Text, 40)), "Tag: ",
		func(q string) []modal.Item { return filterItems(items, q) })
	return nil
}

// openUntagPicker lists the tags over the selection, or at the caret
// when nothing is selected.
func (m *Model) openUntagPicker() tea.Cmd {
	var tags []string
	if m.doc.selection.Text != "" {
		tags = m.doc.selection.Anchors
	} else {
		tags = m.tagsAtCaret()
	}
	if len(tags) == 0 {
		return m.setStatus("no tags here")
	}
	items := make([]modal.Item, len(tags))
	for i, tag := range tags {
		items[i] = modal.Item{ID: tag, Name: tag}
	}
	m.openPicker(pickUntag, "Remove tag", "Tag: ",
		func(q string) []modal.Item { return filterItems(items, q) })
	return nil
}

func (m *Model) tagsAtCaret() []string {
	t := m.ann.Document()
	c := m.ann.Caret()
	p, ok := t.Locate(c.Y, c.X)
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(annotation.ActiveTagsAt(t, p)))
}

// openJumpPicker lists every tag occurrence in the document.
func (m *Model) openJumpPicker() tea.Cmd {
	t := m.ann.Document()
	var items []modal.Item
	for _, tag := range annotation.Tags(t) {
		for n, occ := range annotation.Occurrences(t, tag) {
			items = append(items, modal.Item{
				ID:   tag + "#" + strconv.Itoa(n),
				Name: fmt.Sprintf("%s #%d", tag, n+1),
				Desc: ellipsize(t.RangeText(occ[0], occ[1]), 50),
			})
		}
	}
	if len(items) == 0 {
		return m.setStatus("no tags in document")
	}
	m.openPicker(pickJump, "Jump to tag", "Find: ",
		func(q string) []modal.Item { return filterItems(items, q) })
	return nil
}

// openDocumentPicker searches the store.
func (m *Model) openDocumentPicker() tea.Cmd {
	if m.store == nil {
		return m.setStatus("no document store")
	}
	st := m.store
	searchFn := func(q string) []modal.Item {
		var docs []store.Document
		var err error
		if strings.TrimSpace(q) == "" {
			docs, err = st.ListDocuments()
		} else {
			docs, err = st.FindDocuments(q)
		}
		if err != nil {
			log.Warn().Err(err).Msg("document search failed")
			return nil
		}
		items := make([]modal.Item, len(docs))
		for i, d := range docs {
			items[i] = modal.Item{ID: d.ID, Name: d.ID, Desc: d.Title}
		}
		return items
	}
	m.openPicker(pickDocument, "Open document", "Search: ", searchFn)
	return nil
}

func (m *Model) openHelp() {
	var sb strings.Builder
	for _, kb := range keybinds {
		fmt.Fprintf(&sb, "%-16s %s\n", kb[0], kb[1])
	}
	tv := modal.NewTextView("Keys", strings.TrimRight(sb.String(), "\n"), m.modalColors())
	m.textView = &tv
}

// openDiff shows the changes made since the document was opened.
func (m *Model) openDiff() tea.Cmd {
	diff := textdiff.Unified(m.docName(), m.doc.original, m.ann.Text())
	if diff == "" {
		return m.setStatus("no changes")
	}
	added, removed := textdiff.Stat(diff)
	tv := modal.NewTextView(fmt.Sprintf("Changes +%d -%d", added, removed), diff, m.modalColors())
	tv.Diff = true
	m.textView = &tv
	return nil
}

// updateModal routes a message to the open dialog. Keys and mouse events
// never fall through to the document.
func (m Model) updateModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.textView != nil {
		action, cmd := m.textView.HandleMsg(msg)
		if _, ok := action.(modal.ActionClose); ok {
			m.textView = nil
		}
		return m, cmd
	}

	action, cmd := m.picker.HandleMsg(msg)
	switch a := action.(type) {
	case modal.ActionClose:
		m.picker = nil
		return m, cmd
	case modal.ActionSelect:
		kind := m.pickerKind
		m.picker = nil
		return m, tea.Batch(cmd, m.applyPick(kind, a.Item.ID))
	case modal.ActionSubmit:
		kind := m.pickerKind
		m.picker = nil
		return m, tea.Batch(cmd, m.applyPick(kind, a.Text))
	}
	return m, cmd
}

func (m *Model) applyPick(kind pickerKind, id string) tea.Cmd {
	switch kind {
	case pickTag:
		return m.addTag(id)
	case pickUntag:
		return m.removeTag(id)
	case pickJump:
		tag, n, ok := strings.Cut(id, "#")
		idx, err := strconv.Atoi(n)
		if !ok || err != nil || !m.ann.ScrollToAnchor(tag, idx) {
			return m.setStatus("tag not found")
		}
		return nil
	case pickDocument:
		return m.switchDocument(id)
	}
	return nil
}

func (m *Model) addTag(tag string) tea.Cmd {
	if !text.IsTagID(tag) {
		return m.setError(fmt.Errorf("%w: %q", annotation.ErrInvalidTag, tag))
	}
	if err := m.ann.AddAnchor(tag); err != nil {
		return m.setError(err)
	}
	m.results = nil
	m.updateComponentSizes()
	return m.setStatus("tagged " + tag)
}

func (m *Model) removeTag(tag string) tea.Cmd {
	var removed bool
	if m.doc.selection.Text != "" {
		var err error
		if removed, err = m.ann.RemoveAnchorFromSelection(tag); err != nil {
			return m.setError(err)
		}
	} else {
		removed = m.ann.RemoveAnchorAt(m.ann.Caret(), tag)
	}
	if !removed {
		return m.setStatus("no " + tag + " tag here")
	}
	m.results = nil
	m.updateComponentSizes()
	return m.setStatus("removed " + tag)
}

// switchDocument saves the current document and loads another one.
func (m *Model) switchDocument(id string) tea.Cmd {
	if id == m.doc.id {
		return nil
	}
	if err := m.persist(); err != nil {
		return m.setError(err)
	}
	doc, err := m.store.GetDocument(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return m.setStatus("document " + id + " is gone")
		}
		return m.setError(err)
	}
	m.doc.id, m.doc.title, m.doc.original = doc.ID, doc.Title, doc.Raw
	m.doc.changes, m.doc.scroll = 0, doc.Scroll
	m.doc.selection = annotator.Selection{}
	m.results, m.query = nil, ""
	m.ann.SetText(doc.Raw)
	m.updateComponentSizes()
	m.ann.ScrollToLine(doc.Scroll)
	return m.setStatus("opened " + m.docName())
}

func (m *Model) docName() string {
	switch {
	case m.doc.title != "":
		return m.doc.title
	case m.doc.id != "":
		return m.doc.id
	}
	return "untitled"
}

func ellipsize(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
