package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantToken string
		wantNames []string
	}{
		{
			name:      "token only",
			header:    "token=abc123",
			wantToken: "abc123",
			wantNames: []string{"token"},
		},
		{
			name:      "token among other cookies",
			header:    "theme=dark; token=abc123; lang=es",
			wantToken: "abc123",
			wantNames: []string{"lang", "theme", "token"},
		},
		{
			name:      "url-encoded value",
			header:    "token=a%2Bb%3Dc",
			wantToken: "a+b=c",
			wantNames: []string{"token"},
		},
		{
			name:      "value containing equals is split on first only",
			header:    "token=header.payload=sig",
			wantToken: "header.payload=sig",
			wantNames: []string{"token"},
		},
		{
			name:      "no token cookie",
			header:    "theme=dark; lang=es",
			wantToken: "",
			wantNames: []string{"lang", "theme"},
		},
		{
			name:      "empty header",
			header:    "",
			wantToken: "",
			wantNames: []string{},
		},
		{
			name:      "malformed pairs skipped",
			header:    "theme=dark; justavalue; =orphan; token=t1",
			wantToken: "t1",
			wantNames: []string{"theme", "token"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Parse(tt.header)
			assert.Equal(t, tt.wantToken, s.Token)
			assert.Equal(t, tt.wantNames, s.CookieNames())
		})
	}
}

func TestAuthenticated(t *testing.T) {
	assert.True(t, Parse("token=abc").Authenticated())
	assert.False(t, Parse("token=").Authenticated())
	assert.False(t, Parse("other=abc").Authenticated())
	assert.False(t, (*Session)(nil).Authenticated())
}
