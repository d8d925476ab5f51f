package sites

import (
	"context"
	"net/http"
	"strings"

	"github.com/pders01/plx/internal/plugins"
)

// RedditPlugin turns a subreddit into the RSS feed of its posts. Image
// posts carry their picture as a thumbnail or an inline <img>.
type RedditPlugin struct{}

func NewRedditPlugin() *RedditPlugin {
	return &RedditPlugin{}
}

func (p *RedditPlugin) Name() string {
	return "reddit"
}

func (p *RedditPlugin) CanHandle(url string) bool {
	for _, host := range []string{"://www.reddit.com/r/", "://reddit.com/r/", "://old.reddit.com/r/"} {
		if strings.Contains(url, host) {
			return true
		}
	}
	return false
}

func (p *RedditPlugin) Priority() int {
	return 50
}

func (p *RedditPlugin) Resolve(_ context.Context, rawURL string, _ *http.Client) (*plugins.SourceInfo, error) {
	base, rest, _ := strings.Cut(rawURL, "/r/")
	subreddit := "unknown"
	if name, _, _ := strings.Cut(rest, "/"); name != "" {
		subreddit = name
	}
	if i := strings.IndexAny(subreddit, "?#"); i >= 0 {
		subreddit = subreddit[:i]
	}

	return &plugins.SourceInfo{
		PageURL:     rawURL,
		FeedURL:     base + "/r/" + subreddit + ".rss",
		Title:       "r/" + subreddit,
		Description: "Posts from r/" + subreddit,
		Metadata: map[string]string{
			"plugin":    "reddit",
			"subreddit": subreddit,
		},
	}, nil
}
