package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/plx/internal/config"
	"github.com/pders01/plx/internal/parallax"
	"github.com/pders01/plx/internal/search"
	"github.com/pders01/plx/internal/storage"
)

// chromeRows is the header line plus the status line.
const chromeRows = 2

// ImageOpener shows an item's image outside the terminal.
type ImageOpener interface {
	Open(ref string) error
}

type Option func(*App)

// WithFilterer enables `/` search through f.
func WithFilterer(f search.Filterer) Option {
	return func(a *App) { a.filterer = f }
}

// WithOpener sets how `o` opens images.
func WithOpener(o ImageOpener) Option {
	return func(a *App) { a.opener = o }
}

// App is the bubbletea model of the gallery. It hosts a parallax.Layout:
// terminal rows are converted to layout pixels with cell_height, and the
// layout's scroll requests land in ScrollTo and SmoothScrollTo.
type App struct {
	config     *config.Config
	store      *storage.Store
	filterer   search.Filterer
	opener     ImageOpener
	keyHandler *KeyHandler
	layout     *parallax.Layout
	theme      itemTheme

	galleryID string
	gallery   *storage.Gallery
	items     []*storage.Item
	shown     []*storage.Item
	loaded    bool

	filter      string
	savedOffset int

	offset     int
	placements []parallax.Placement
	anim       *scrollAnim
	animSeq    int

	view            View
	searchInput     textinput.Model
	detail          viewport.Model
	help            help.Model
	glamourRenderer *glamour.TermRenderer
	rendererWidth   int

	width  int
	height int

	status     string
	statusKind StatusKind
	statusSeq  int
}

var _ parallax.Host = (*App)(nil)

func NewApp(store *storage.Store, cfg *config.Config, galleryID string, opts ...Option) *App {
	si := textinput.New()
	si.Placeholder = "Filter this gallery…"
	si.Prompt = "/ "

	app := &App{
		config:      cfg,
		store:       store,
		galleryID:   galleryID,
		theme:       newItemTheme(cfg.UI.Palette),
		searchInput: si,
		detail:      viewport.New(0, 0),
		help:        help.New(),
		view:        ViewGallery,
	}
	app.layout = parallax.New(cfg.Layout.Options(), app)
	app.keyHandler = NewKeyHandler(app, cfg)

	for _, opt := range opts {
		opt(app)
	}
	return app
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.setStatus(MsgLoading, StatusInfo, 0),
		a.loadGallery(),
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case tea.MouseMsg:
		return a, a.handleMouse(msg)

	case galleryLoadedMsg:
		a.gallery = msg.gallery
		a.items = msg.items
		a.shown = msg.items
		a.loaded = true
		a.layout.RestoreScrollOffset(msg.offset)
		a.layout.SetDataset(storage.Descriptors(a.shown), false)
		a.scrollTo(a.offset)
		if msg.offsetErr != nil {
			return a, a.setStatus(fmt.Sprintf("✗ %v", msg.offsetErr), StatusError, 0)
		}
		return a, a.setStatus(fmt.Sprintf("%d items", len(msg.items)), StatusInfo, statusTTL)

	case filterAppliedMsg:
		return a, a.applyFilter(msg.query, msg.items)

	case detailRenderedMsg:
		a.detail.SetContent(msg.content)
		a.detail.GotoTop()
		return a, nil

	case scrollFrameMsg:
		return a, a.advanceAnimation(msg.seq)

	case statusMsg:
		return a, a.setStatus(msg.text, msg.kind, statusTTL)

	case statusClearMsg:
		a.clearStatus(msg.seq)
		return a, nil

	case errorMsg:
		return a, a.setStatus(fmt.Sprintf("✗ %v", msg.err), StatusError, 0)
	}

	if a.view == ViewDetail {
		var cmd tea.Cmd
		a.detail, cmd = a.detail.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height
	a.help.Width = max(width-2, 0)
	a.searchInput.Width = max(min(width-10, 60), 10)
	a.detail.Width = width
	a.detail.Height = a.bodyRows()

	a.layout.OnViewportMeasured(a.bodyRows() * a.cellHeight())
	a.scrollTo(a.offset)
}

func (a *App) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if a.view != ViewGallery || msg.Action != tea.MouseActionPress {
		return nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		a.scrollBy(-a.scrollStep())
	case tea.MouseButtonWheelDown:
		a.scrollBy(a.scrollStep())
	case tea.MouseButtonLeft:
		if a.sentinelAtRow(msg.Y - 1) {
			return a.tapSentinel()
		}
	}
	return nil
}

func (a *App) bodyRows() int {
	return max(a.height-chromeRows, 1)
}

func (a *App) cellHeight() int {
	return max(a.config.Layout.CellHeight, 1)
}

func (a *App) scrollStep() int {
	return max(a.config.Layout.ScrollStep, 1)
}

func (a *App) viewportPixels() int {
	return a.bodyRows() * a.cellHeight()
}

// ScrollOffset is the current offset in layout pixels.
func (a *App) ScrollOffset() int {
	return a.offset
}

func (a *App) View() string {
	if a.width == 0 {
		return ""
	}

	var body string
	switch a.view {
	case ViewSearch:
		body = a.searchView()
	case ViewDetail:
		body = a.detail.View()
	default:
		if a.help.ShowAll {
			body = renderCentered(a.width, a.bodyRows(), a.help.FullHelpView(a.keyHandler.keys.FullHelp()))
		} else {
			body = a.galleryView()
		}
	}

	body = lipgloss.NewStyle().
		Width(a.width).
		Height(a.bodyRows()).
		MaxHeight(a.bodyRows()).
		Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, a.headerView(), body, a.statusView())
}

func (a *App) headerView() string {
	title := a.galleryID
	if a.gallery != nil && a.gallery.Title != "" {
		title = a.gallery.Title
	}

	var info []string
	if len(a.shown) > 0 {
		pos := 0
		if p, ok := a.focused(); ok {
			pos = p.Index + 1
		}
		info = append(info, fmt.Sprintf("%d/%d", pos, len(a.shown)))
	}
	if a.filter != "" {
		info = append(info, fmt.Sprintf("filter %q", a.filter))
	}
	right := StatusInfoStyle.Render(strings.Join(info, " • "))

	leftWidth := max(a.width-lipgloss.Width(right)-1, 0)
	left := HeaderStyle.Render(truncateEnd(CompactLogo+" "+title, leftWidth))
	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return left + strings.Repeat(" ", gap) + right
}

func (a *App) galleryView() string {
	rows := a.bodyRows()
	if !a.loaded {
		return renderCentered(a.width, rows, HelpStyle.Render(MsgLoading))
	}
	if len(a.items) == 0 {
		return renderCentered(a.width, rows, GetWelcomeMessage())
	}
	lines := renderGallery(a.placements, a.offset, a.width, rows, a.cellHeight(), a.theme)
	return strings.Join(lines, "\n")
}

func (a *App) searchView() string {
	border := MutedColor
	if a.searchInput.Focused() {
		border = AccentColor
	}
	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Render(a.searchInput.View())

	return renderCentered(a.width, a.bodyRows(), lipgloss.JoinVertical(
		lipgloss.Center,
		TitleStyle.Render("› filter gallery"),
		"",
		frame,
		"",
		HelpStyle.Render(a.searchHint()),
	))
}

func (a *App) searchHint() string {
	hint := "enter: apply • empty enter: clear • esc: cancel"
	if s, ok := a.filterer.(search.DebugStatser); ok {
		if n, err := s.DocCount(); err == nil {
			hint = fmt.Sprintf("%d items indexed • %s", n, hint)
		}
	}
	return hint
}

func (a *App) statusView() string {
	if a.status != "" {
		return lipgloss.NewStyle().
			Width(a.width).
			Padding(0, 1).
			Render(statusStyle(a.statusKind)(truncateEnd(a.status, a.width-2)))
	}
	return lipgloss.NewStyle().
		Width(a.width).
		Padding(0, 1).
		Render(a.help.ShortHelpView(a.keyHandler.keys.ShortHelp()))
}

func renderCentered(width, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
