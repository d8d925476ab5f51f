package sites

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/pders01/plx/internal/plugins"
)

var profilePath = regexp.MustCompile(`^/@([A-Za-z0-9_]+)/?$`)

// MastodonPlugin maps a profile page such as https://mastodon.social/@user
// onto the account's public RSS feed, whose media attachments become the
// gallery images.
type MastodonPlugin struct{}

func NewMastodonPlugin() *MastodonPlugin {
	return &MastodonPlugin{}
}

func (p *MastodonPlugin) Name() string {
	return "mastodon"
}

func (p *MastodonPlugin) CanHandle(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	return profilePath.MatchString(u.Path)
}

func (p *MastodonPlugin) Priority() int {
	return 30
}

func (p *MastodonPlugin) Resolve(_ context.Context, rawURL string, _ *http.Client) (*plugins.SourceInfo, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	account := profilePath.FindStringSubmatch(u.Path)[1]

	feed := *u
	feed.Path = "/@" + account + ".rss"
	feed.RawQuery = ""
	feed.Fragment = ""

	handle := "@" + account + "@" + strings.ToLower(u.Hostname())
	return &plugins.SourceInfo{
		PageURL:     rawURL,
		FeedURL:     feed.String(),
		Title:       handle,
		Description: "Media posted by " + handle,
		Metadata: map[string]string{
			"plugin":  "mastodon",
			"account": account,
		},
	}, nil
}
