package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/pders01/plx/internal/debuglog"
	"github.com/pders01/plx/internal/search"
	"github.com/pders01/plx/internal/storage"
)

func (a *App) loadGallery() tea.Cmd {
	id := a.galleryID
	return func() tea.Msg {
		g, err := a.store.GetGallery(id)
		if err != nil {
			return errorMsg{err: wrapErr("loading gallery", err)}
		}
		items, err := a.store.GetItems(id, 0)
		if err != nil {
			return errorMsg{err: wrapErr("loading items", err)}
		}
		msg := galleryLoadedMsg{gallery: g, items: items}
		offset, err := a.store.LoadScrollOffset(id)
		switch {
		case err == nil:
			msg.offset = offset
		case !errors.Is(err, storage.ErrNotFound):
			debuglog.Errorf("tui: reading saved offset for %s: %v", id, err)
			msg.offsetErr = wrapErr("reading saved offset", err)
		}
		return msg
	}
}

// runFilter queries the search index off the update loop.
func (a *App) runFilter(query string) tea.Cmd {
	id, items, f := a.galleryID, a.items, a.filterer
	return func() tea.Msg {
		ids, err := f.Filter(id, query, len(items))
		if err != nil {
			return errorMsg{err: wrapErr("search", err)}
		}
		return filterAppliedMsg{query: query, items: search.Select(items, ids)}
	}
}

// applyFilter shows only matches, starting again from the top. The
// unfiltered offset is kept for clearFilter.
func (a *App) applyFilter(query string, matches []*storage.Item) tea.Cmd {
	if len(matches) == 0 {
		return a.setStatus(MsgNoResults, StatusWarn, statusTTL)
	}
	if a.filter == "" {
		a.savedOffset = a.offset
	}
	a.filter = query
	a.shown = matches
	a.layout.SetDataset(storage.Descriptors(a.shown), true)
	a.scrollTo(a.offset)
	return a.setStatus(MsgResultsCount(query, len(matches)), StatusSuccess, statusTTL)
}

// clearFilter brings back the whole gallery where it was left.
func (a *App) clearFilter() tea.Cmd {
	if a.filter == "" {
		return nil
	}
	a.filter = ""
	a.shown = a.items
	a.layout.RestoreScrollOffset(a.savedOffset)
	a.layout.SetDataset(storage.Descriptors(a.shown), false)
	a.scrollTo(a.offset)
	return a.setStatus(MsgFilterCleared, StatusInfo, statusTTL)
}

// persistedOffset is the offset of the unfiltered gallery.
func (a *App) persistedOffset() int {
	if a.filter != "" {
		return a.savedOffset
	}
	return a.offset
}

func (a *App) saveScrollOffset() tea.Cmd {
	if a.gallery == nil {
		return nil
	}
	id, offset := a.gallery.ID, a.persistedOffset()
	return func() tea.Msg {
		err := retryOperation(func() error { return a.store.SaveScrollOffset(id, offset) })
		if err != nil {
			debuglog.Errorf("tui: saving offset for %s: %v", id, err)
			return errorMsg{err: wrapErr("saving position", err)}
		}
		debuglog.Debugf("tui: saved offset %d for %s", offset, id)
		return nil
	}
}

func (a *App) quit() tea.Cmd {
	if save := a.saveScrollOffset(); save != nil {
		return tea.Sequence(save, tea.Quit)
	}
	return tea.Quit
}

func (a *App) openImage(item *storage.Item) tea.Cmd {
	opener := a.opener
	ref := item.ImageRef
	return func() tea.Msg {
		if opener == nil {
			return statusMsg{text: "No image viewer configured", kind: StatusWarn}
		}
		if err := opener.Open(ref); err != nil {
			return statusMsg{text: fmt.Sprintf("✗ %v", err), kind: StatusError}
		}
		return statusMsg{text: MsgOpened, kind: StatusSuccess}
	}
}

func (a *App) renderDetail(item *storage.Item, position int) tea.Cmd {
	total := len(a.shown)
	title := a.galleryID
	if a.gallery != nil && a.gallery.Title != "" {
		title = a.gallery.Title
	}
	r, rendererErr := a.getRenderer()
	return func() tea.Msg {
		var md strings.Builder
		fmt.Fprintf(&md, "# %s\n\n", item.Title)
		if !item.Published.IsZero() {
			fmt.Fprintf(&md, "*Published: %s*\n\n", item.Published.Format(time.RFC1123))
		}
		switch {
		case item.Body != "":
			md.WriteString(item.Body + "\n\n")
		case item.Caption != "":
			md.WriteString(item.Caption + "\n\n")
		}
		fmt.Fprintf(&md, "**Image:** `%s`\n\n", item.ImageRef)
		if item.Link != "" {
			fmt.Fprintf(&md, "[Open link](%s)\n\n", item.Link)
		}
		fmt.Fprintf(&md, "---\n\n*%d of %d in %s*\n", position+1, total, title)

		if rendererErr != nil {
			return detailRenderedMsg{content: "Error initializing renderer: " + rendererErr.Error()}
		}
		out, err := r.Render(md.String())
		if err != nil {
			return detailRenderedMsg{content: md.String()}
		}
		return detailRenderedMsg{content: out}
	}
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	wrap := min(max(a.width-4, 20), 100)
	if a.glamourRenderer == nil || a.rendererWidth != wrap {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wrap
	}
	return a.glamourRenderer, nil
}

// saveAttempts and saveBackoff bound retryOperation.
const (
	saveAttempts = 3
	saveBackoff  = 50 * time.Millisecond
)

// retryOperation runs a store write such as persisting the scroll offset on
// quit, doubling the pause after each failed attempt. The last error is
// returned.
func retryOperation(write func() error) error {
	var err error
	for attempt := range saveAttempts {
		if err = write(); err == nil {
			return nil
		}
		if attempt < saveAttempts-1 {
			time.Sleep(saveBackoff << attempt)
		}
	}
	return err
}

func wrapErr(context string, err error) error {
	return fmt.Errorf("%s: %w", context, err)
}
