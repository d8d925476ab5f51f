package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestSanitizeQuery(t *testing.T) {
	assert.Equal(t, "harbor", sanitizeQuery("  harbor\t"))
	assert.Equal(t, "ab", sanitizeQuery("a\x00b\x7f"))
	assert.Equal(t, "", sanitizeQuery("\n\n"))
}

func TestDetailKeys(t *testing.T) {
	o := &fakeOpener{}
	app := newTestApp(t, newTestStore(t, testItems), WithOpener(o))

	press(app, "i")
	assert.Equal(t, ViewDetail, app.view)

	press(app, "j")
	assert.Equal(t, 0, app.ScrollOffset(), "j scrolls the detail pane, not the gallery")

	runCmd(press(app, "o"))
	assert.Equal(t, []string{"https://photos.org/0.jpg"}, o.opened)

	press(app, "i")
	assert.Equal(t, ViewGallery, app.view)
}

func TestCtrlCQuitsFromEveryView(t *testing.T) {
	app := newTestApp(t, newTestStore(t, testItems), WithFilterer(&fakeFilterer{}))

	for _, enter := range []string{"", "/", "i"} {
		app.view = ViewGallery
		if enter != "" {
			press(app, enter)
		}
		_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		assert.NotNil(t, cmd, "view %s", app.view)
	}
}

func TestQKeyQuits(t *testing.T) {
	app := newTestApp(t, newTestStore(t, testItems))
	assert.NotNil(t, press(app, "q"))
}
