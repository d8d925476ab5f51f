package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/pders01/plx/internal/config"
	"github.com/pders01/plx/internal/storage"
)

// With an 80x27 terminal the body is 25 rows of 24px: a 600px viewport,
// 360px items, 180px collapsed items and a 240px sentinel.
const (
	testWidth  = 80
	testHeight = 27
	testItems  = 10
	testMax    = testItems*360 + 240 - 600
)

type fakeFilterer struct {
	ids   []string
	err   error
	calls []string
}

func (f *fakeFilterer) Filter(galleryID, query string, limit int) ([]string, error) {
	f.calls = append(f.calls, galleryID+":"+query)
	return f.ids, f.err
}

type fakeOpener struct {
	opened []string
	err    error
}

func (f *fakeOpener) Open(ref string) error {
	f.opened = append(f.opened, ref)
	return f.err
}

func newTestStore(t *testing.T, n int) *storage.Store {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.SaveGallery(&storage.Gallery{ID: "g", Title: "Test Gallery"}))
	items := make([]*storage.Item, n)
	for i := range items {
		items[i] = &storage.Item{
			ID:       fmt.Sprintf("g-%d", i),
			Title:    fmt.Sprintf("Picture %d", i),
			ImageRef: fmt.Sprintf("https://photos.org/%d.jpg", i),
			Caption:  "caption",
		}
	}
	require.NoError(t, store.ReplaceItems("g", items))
	return store
}

// newTestApp loads the gallery and sizes the terminal like bubbletea
// would at startup.
func newTestApp(t *testing.T, store *storage.Store, opts ...Option) *App {
	t.Helper()
	app := NewApp(store, config.TestConfig(), "g", opts...)
	app.Update(tea.WindowSizeMsg{Width: testWidth, Height: testHeight})
	app.Update(app.loadGallery()())
	require.True(t, app.loaded)
	return app
}

func press(app *App, keys string) tea.Cmd {
	var msg tea.KeyMsg
	switch keys {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}
	_, cmd := app.Update(msg)
	return cmd
}

// runCmd executes cmd and any batched commands, returning their messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestLoadRestoresSavedOffset(t *testing.T) {
	store := newTestStore(t, testItems)
	require.NoError(t, store.SaveScrollOffset("g", 720))

	app := newTestApp(t, store)
	assert.Equal(t, 720, app.ScrollOffset())
	assert.Equal(t, 720, app.layout.ScrollOffset())
	assert.NotEmpty(t, app.placements)
}

func TestLoadBeforeMeasurementKeepsOffset(t *testing.T) {
	store := newTestStore(t, testItems)
	require.NoError(t, store.SaveScrollOffset("g", 1080))

	app := NewApp(store, config.TestConfig(), "g")
	app.Update(app.loadGallery()())
	assert.Equal(t, 1080, app.ScrollOffset())
	assert.Empty(t, app.placements)

	app.Update(tea.WindowSizeMsg{Width: testWidth, Height: testHeight})
	assert.Equal(t, 1080, app.ScrollOffset())
	assert.Equal(t, 3, app.layout.FirstVisible())
	assert.NotEmpty(t, app.placements)
}

func TestSavedOffsetIsClamped(t *testing.T) {
	store := newTestStore(t, testItems)
	require.NoError(t, store.SaveScrollOffset("g", 99999))

	app := newTestApp(t, store)
	assert.Equal(t, testMax, app.ScrollOffset())
}

func TestUnreadableSavedOffset(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := storage.NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.SaveGallery(&storage.Gallery{ID: "g", Title: "Test Gallery"}))
	require.NoError(t, store.ReplaceItems("g", []*storage.Item{{ID: "g-0", Title: "Picture 0"}}))
	require.NoError(t, store.SaveScrollOffset("g", 120))
	require.NoError(t, store.Close())

	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: time.Second})
	require.NoError(t, err)
	require.NoError(t, db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte("view_state")).Put([]byte("g"), []byte("{not json"))
	}))
	require.NoError(t, db.Close())

	store, err = storage.NewStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	app := newTestApp(t, store)
	assert.Equal(t, 0, app.ScrollOffset())
	assert.Len(t, app.shown, 1, "the gallery still loads")
	assert.Equal(t, StatusError, app.statusKind)
	assert.Contains(t, app.status, "reading saved offset")
}

func TestRetryOperation(t *testing.T) {
	calls := 0
	err := retryOperation(func() error {
		calls++
		if calls < 2 {
			return errors.New("database busy")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	calls = 0
	err = retryOperation(func() error {
		calls++
		return fmt.Errorf("attempt %d", calls)
	})
	require.EqualError(t, err, "attempt 3")
	assert.Equal(t, saveAttempts, calls)
}

func TestKeyScrolling(t *testing.T) {
	app := newTestApp(t, newTestStore(t, testItems))

	press(app, "j")
	assert.Equal(t, 48, app.ScrollOffset())
	press(app, "j")
	press(app, "k")
	assert.Equal(t, 48, app.ScrollOffset())
	press(app, "k")
	press(app, "k")
	assert.Equal(t, 0, app.ScrollOffset(), "never scrolls above the top")

	press(app, "G")
	assert.Equal(t, testMax, app.ScrollOffset())
	press(app, "j")
	assert.Equal(t, testMax, app.ScrollOffset(), "never scrolls past the end")

	press(app, "g")
	assert.Equal(t, 0, app.ScrollOffset())

	app.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	assert.Equal(t, 600, app.ScrollOffset())
}

func TestMouseWheel(t *testing.T) {
	app := newTestApp(t, newTestStore(t, testItems))

	app.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	app.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	assert.Equal(t, 96, app.ScrollOffset())
	app.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	assert.Equal(t, 48, app.ScrollOffset())
}

func TestTapSentinelScrollsSmoothlyToTop(t *testing.T) {
	app := newTestApp(t, newTestStore(t, testItems))
	press(app, "G")
	require.True(t, app.sentinelVisible())

	cmd := press(app, "t")
	require.NotNil(t, cmd)
	require.NotNil(t, app.anim)

	prev := app.ScrollOffset()
	for i := 0; i < app.config.Layout.SmoothScrollFrames; i++ {
		app.Update(scrollFrameMsg{seq: app.animSeq})
		assert.LessOrEqual(t, app.ScrollOffset(), prev)
		prev = app.ScrollOffset()
	}
	assert.Equal(t, 0, app.ScrollOffset())
	assert.Nil(t, app.anim)
	assert.Equal(t, 0, app.layout.FirstVisible())
}

func TestEnterOnVisibleSentinelTapsIt(t *testing.T) {
	app := newTestApp(t, newTestStore(t, testItems))
	press(app, "G")

	press(app, "enter")
	assert.NotNil(t, app.anim)
	assert.Equal(t, ViewGallery, app.view)
}

func TestUserScrollCancelsAnimation(t *testing.T) {
	app := newTestApp(t, newTestStore(t, testItems))
	press(app, "G")
	press(app, "t")
	stale := app.animSeq

	app.Update(scrollFrameMsg{seq: stale})
	mid := app.ScrollOffset()
	press(app, "k")
	assert.Nil(t, app.anim)
	assert.Equal(t, mid-48, app.ScrollOffset())

	app.Update(scrollFrameMsg{seq: stale})
	assert.Equal(t, mid-48, app.ScrollOffset(), "stale frames are ignored")
}

func TestTapSentinelAtTopIsNoop(t *testing.T) {
	app := newTestApp(t, newTestStore(t, testItems))
	assert.Nil(t, press(app, "t"))
	assert.Nil(t, app.anim)
}

func TestFilterAndClear(t *testing.T) {
	f := &fakeFilterer{ids: []string{"g-7", "g-2"}}
	app := newTestApp(t, newTestStore(t, testItems), WithFilterer(f))
	press(app, "G")
	before := app.ScrollOffset()

	press(app, "/")
	require.Equal(t, ViewSearch, app.view)
	press(app, "pic")
	assert.Equal(t, "pic", app.searchInput.Value())

	cmd := press(app, "enter")
	require.NotNil(t, cmd)
	assert.Equal(t, ViewGallery, app.view)

	app.Update(app.runFilter("pic")())
	assert.Equal(t, []string{"g:pic"}, f.calls)
	require.Len(t, app.shown, 2)
	assert.Equal(t, "g-2", app.shown[0].ID, "matches keep gallery order")
	assert.Equal(t, "pic", app.filter)
	assert.Equal(t, 0, app.ScrollOffset(), "a new filter starts at the top")
	assert.Equal(t, 3, app.layout.TotalElements())

	press(app, "esc")
	assert.Empty(t, app.filter)
	assert.Len(t, app.shown, testItems)
	assert.Equal(t, before, app.ScrollOffset(), "clearing restores the unfiltered offset")
}

func TestFilterWithoutMatchesKeepsGallery(t *testing.T) {
	f := &fakeFilterer{}
	app := newTestApp(t, newTestStore(t, testItems), WithFilterer(f))
	press(app, "j")

	app.Update(app.runFilter("zzz")())
	assert.Empty(t, app.filter)
	assert.Len(t, app.shown, testItems)
	assert.Equal(t, 48, app.ScrollOffset())
	assert.Equal(t, MsgNoResults, app.status)
}

func TestFilterError(t *testing.T) {
	f := &fakeFilterer{err: errors.New("index closed")}
	app := newTestApp(t, newTestStore(t, testItems), WithFilterer(f))

	app.Update(app.runFilter("pic")())
	assert.Equal(t, StatusError, app.statusKind)
	assert.Contains(t, app.status, "index closed")
}

func TestSearchUnavailable(t *testing.T) {
	app := newTestApp(t, newTestStore(t, testItems))
	press(app, "/")
	assert.Equal(t, ViewGallery, app.view)
	assert.Equal(t, MsgNoSearch, app.status)
}

func TestSearchEscCancels(t *testing.T) {
	app := newTestApp(t, newTestStore(t, testItems), WithFilterer(&fakeFilterer{}))
	press(app, "/")
	press(app, "q")
	assert.Equal(t, "q", app.searchInput.Value(), "q types while searching")
	press(app, "esc")
	assert.Equal(t, ViewGallery, app.view)
	assert.Empty(t, app.filter)
}

func TestSaveScrollOffset(t *testing.T) {
	store := newTestStore(t, testItems)
	app := newTestApp(t, store, WithFilterer(&fakeFilterer{ids: []string{"g-1"}}))
	press(app, "j")
	press(app, "j")

	runCmd(app.saveScrollOffset())
	offset, err := store.LoadScrollOffset("g")
	require.NoError(t, err)
	assert.Equal(t, 96, offset)

	// while filtered the unfiltered position is what gets saved
	app.Update(app.runFilter("one")())
	press(app, "j")
	runCmd(app.saveScrollOffset())
	offset, err = store.LoadScrollOffset("g")
	require.NoError(t, err)
	assert.Equal(t, 96, offset)
}

func TestQuitWithoutGallery(t *testing.T) {
	app := NewApp(newTestStore(t, 0), config.TestConfig(), "missing")
	assert.Nil(t, app.saveScrollOffset())
	assert.NotNil(t, app.quit())
}

func TestOpenImage(t *testing.T) {
	o := &fakeOpener{}
	app := newTestApp(t, newTestStore(t, testItems), WithOpener(o))
	press(app, "G")
	p, ok := app.focused()
	require.True(t, ok)

	for _, msg := range runCmd(press(app, "o")) {
		app.Update(msg)
	}
	assert.Equal(t, []string{fmt.Sprintf("https://photos.org/%d.jpg", p.Index)}, o.opened)
	assert.Equal(t, MsgOpened, app.status)

	o.err = errors.New("no display")
	for _, msg := range runCmd(press(app, "o")) {
		app.Update(msg)
	}
	assert.Equal(t, StatusError, app.statusKind)
	assert.Contains(t, app.status, "no display")
}

func TestDetailView(t *testing.T) {
	app := newTestApp(t, newTestStore(t, testItems))
	press(app, "j")

	cmd := press(app, "i")
	require.Equal(t, ViewDetail, app.view)
	msgs := runCmd(cmd)
	require.Len(t, msgs, 1)
	rendered, ok := msgs[0].(detailRenderedMsg)
	require.True(t, ok)
	text := ansi.Strip(rendered.content)
	assert.Contains(t, text, "Picture 0")
	assert.Contains(t, text, "1 of 10")

	app.Update(rendered)
	press(app, "esc")
	assert.Equal(t, ViewGallery, app.view)
	assert.Equal(t, 48, app.ScrollOffset(), "detail view leaves the offset alone")
}

func TestView(t *testing.T) {
	app := newTestApp(t, newTestStore(t, testItems))
	out := app.View()

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, testHeight)
	assert.Contains(t, lines[0], "Test Gallery")
	assert.Contains(t, lines[0], "1/10")
	assert.Contains(t, out, "Picture 0")
	assert.Contains(t, out, "Picture 1")

	press(app, "G")
	assert.Contains(t, app.View(), sentinelLabel)
}

func TestViewEmptyGallery(t *testing.T) {
	app := newTestApp(t, newTestStore(t, 0))
	assert.Contains(t, app.View(), "plx demo")
	assert.Equal(t, 1, app.layout.TotalElements())
}

func TestViewBeforeLoad(t *testing.T) {
	app := NewApp(newTestStore(t, 1), config.TestConfig(), "g")
	assert.Empty(t, app.View())
	app.Update(tea.WindowSizeMsg{Width: testWidth, Height: testHeight})
	assert.Contains(t, app.View(), MsgLoading)
}

func TestLoadMissingGallery(t *testing.T) {
	app := NewApp(newTestStore(t, 1), config.TestConfig(), "missing")
	app.Update(tea.WindowSizeMsg{Width: testWidth, Height: testHeight})
	app.Update(app.loadGallery()())
	assert.False(t, app.loaded)
	assert.Equal(t, StatusError, app.statusKind)
	assert.Contains(t, app.status, "not found")
}

func TestHelpToggle(t *testing.T) {
	app := newTestApp(t, newTestStore(t, testItems))
	press(app, "?")
	assert.True(t, app.help.ShowAll)
	assert.Contains(t, app.View(), "page down")

	press(app, "j")
	assert.False(t, app.help.ShowAll)
	assert.Equal(t, 0, app.ScrollOffset(), "the key closing help does not scroll")
}

func TestCustomKeyBinding(t *testing.T) {
	cfg := config.TestConfig()
	cfg.Keys.Bindings.TapSentinel = "T"
	store := newTestStore(t, testItems)
	app := NewApp(store, cfg, "g")
	app.Update(tea.WindowSizeMsg{Width: testWidth, Height: testHeight})
	app.Update(app.loadGallery()())

	press(app, "G")
	assert.Nil(t, press(app, "t"))
	assert.NotNil(t, press(app, "T"))
}
