package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/plx/internal/config"
)

type KeyHandler struct {
	app  *App
	keys keyMap
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	return &KeyHandler{app: app, keys: newKeyMap(cfg.Keys.Bindings)}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return kh.app, kh.app.quit()
	}

	switch kh.app.view {
	case ViewSearch:
		return kh.handleSearchKeys(msg)
	case ViewDetail:
		return kh.handleDetailKeys(msg)
	default:
		return kh.handleGalleryKeys(msg)
	}
}

func (kh *KeyHandler) handleGalleryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a, k := kh.app, kh.keys

	if a.help.ShowAll && !key.Matches(msg, k.Quit) {
		a.help.ShowAll = false
		return a, nil
	}

	switch {
	case key.Matches(msg, k.Quit):
		return a, a.quit()
	case key.Matches(msg, k.Down):
		a.scrollBy(a.scrollStep())
	case key.Matches(msg, k.Up):
		a.scrollBy(-a.scrollStep())
	case key.Matches(msg, k.PageDown):
		a.scrollBy(a.viewportPixels())
	case key.Matches(msg, k.PageUp):
		a.scrollBy(-a.viewportPixels())
	case key.Matches(msg, k.Top):
		a.cancelAnimation()
		a.scrollTo(0)
	case key.Matches(msg, k.Bottom):
		a.cancelAnimation()
		a.scrollTo(a.layout.MaxScrollOffset())
	case key.Matches(msg, k.TapSentinel):
		return a, a.tapSentinel()
	case key.Matches(msg, k.Select):
		if a.sentinelVisible() {
			return a, a.tapSentinel()
		}
		return kh.showDetails()
	case key.Matches(msg, k.Search):
		return kh.enterSearch()
	case key.Matches(msg, k.OpenImage):
		p, ok := a.focused()
		if !ok {
			return a, a.setStatus(MsgNoItem, StatusWarn, statusTTL)
		}
		return a, tea.Batch(a.setStatus(MsgOpening, StatusInfo, 0), a.openImage(a.shown[p.Index]))
	case key.Matches(msg, k.Details):
		return kh.showDetails()
	case key.Matches(msg, k.Back):
		return a, a.clearFilter()
	case key.Matches(msg, k.Help):
		a.help.ShowAll = true
	}
	return a, nil
}

func (kh *KeyHandler) enterSearch() (tea.Model, tea.Cmd) {
	a := kh.app
	if a.filterer == nil {
		return a, a.setStatus(MsgNoSearch, StatusWarn, statusTTL)
	}
	a.view = ViewSearch
	a.searchInput.SetValue(a.filter)
	a.searchInput.CursorEnd()
	return a, a.searchInput.Focus()
}

func (kh *KeyHandler) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app

	switch msg.Type {
	case tea.KeyEsc:
		a.searchInput.Blur()
		a.view = ViewGallery
		return a, nil
	case tea.KeyEnter:
		query := sanitizeQuery(a.searchInput.Value())
		a.searchInput.Blur()
		a.view = ViewGallery
		if query == "" {
			return a, a.clearFilter()
		}
		return a, tea.Batch(a.setStatus(MsgSearching, StatusInfo, 0), a.runFilter(query))
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	return a, cmd
}

func (kh *KeyHandler) showDetails() (tea.Model, tea.Cmd) {
	a := kh.app
	p, ok := a.focused()
	if !ok {
		return a, a.setStatus(MsgNoItem, StatusWarn, statusTTL)
	}
	a.view = ViewDetail
	a.detail.SetContent(HelpStyle.Render("Rendering…"))
	return a, a.renderDetail(a.shown[p.Index], p.Index)
}

func (kh *KeyHandler) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a, k := kh.app, kh.keys

	switch {
	case key.Matches(msg, k.Quit):
		return a, a.quit()
	case key.Matches(msg, k.Back), key.Matches(msg, k.Details):
		a.view = ViewGallery
		return a, nil
	case key.Matches(msg, k.OpenImage):
		if p, ok := a.focused(); ok {
			return a, a.openImage(a.shown[p.Index])
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.detail, cmd = a.detail.Update(msg)
	return a, cmd
}

// sanitizeQuery trims the query and drops control characters.
func sanitizeQuery(q string) string {
	q = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, q)
	return strings.TrimSpace(q)
}
