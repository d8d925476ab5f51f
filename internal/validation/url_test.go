package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSourceURLValidator(t *testing.T) {
	v := NewSourceURLValidator()
	assert.False(t, v.AllowLocalhost)
	assert.False(t, v.AllowPrivateIPs)
	assert.Equal(t, 2048, v.MaxLength)

	p := NewPermissiveSourceURLValidator()
	assert.True(t, p.AllowLocalhost)
	assert.True(t, p.AllowPrivateIPs)
}

func TestValidateAndNormalize(t *testing.T) {
	v := NewSourceURLValidator()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "empty", input: "   ", wantErr: ErrEmptyURL},
		{name: "adds https", input: "photos.org/feed.xml", want: "https://photos.org/feed.xml"},
		{name: "keeps http", input: "http://photos.org/rss", want: "http://photos.org/rss"},
		{name: "lowercases host", input: "https://Photos.ORG/Feed", want: "https://photos.org/Feed"},
		{name: "drops fragment", input: "https://photos.org/rss#top", want: "https://photos.org/rss"},
		{name: "ftp rejected", input: "ftp://photos.org/rss", wantErr: ErrUnsupportedURL},
		{name: "localhost rejected", input: "http://localhost:8080/rss", wantErr: ErrDisallowedHost},
		{name: "sub localhost rejected", input: "http://feeds.localhost/rss", wantErr: ErrDisallowedHost},
		{name: "private ip rejected", input: "http://192.168.1.4/rss", wantErr: ErrDisallowedHost},
		{name: "loopback ip rejected", input: "http://127.0.0.1/rss", wantErr: ErrDisallowedHost},
		{name: "unspecified rejected", input: "http://0.0.0.0/rss", wantErr: ErrDisallowedHost},
		{name: "public ip allowed", input: "http://8.8.8.8/rss", want: "http://8.8.8.8/rss"},
		{name: "markup rejected", input: "https://photos.org/<script>", wantErr: ErrSuspiciousInput},
		{name: "traversal rejected", input: "https://photos.org/a/../b", wantErr: ErrSuspiciousInput},
		{name: "javascript query rejected", input: "https://photos.org/rss?x=javascript:alert(1)", wantErr: ErrSuspiciousInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateAndNormalize(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateAndNormalize_TooLong(t *testing.T) {
	v := &SourceURLValidator{MaxLength: 20}
	_, err := v.ValidateAndNormalize("https://photos.org/a/very/long/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too long")
}

func TestPermissiveValidatorAllowsLocal(t *testing.T) {
	v := NewPermissiveSourceURLValidator()

	for _, in := range []string{"http://localhost:8080/rss", "http://127.0.0.1:9000/feed", "http://10.0.0.2/rss"} {
		got, err := v.ValidateAndNormalize(in)
		require.NoError(t, err, in)
		assert.Equal(t, in, got)
	}

	_, err := v.ValidateAndNormalize("http://0.0.0.0/rss")
	require.ErrorIs(t, err, ErrDisallowedHost)
}
