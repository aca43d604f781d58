package accessclient

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
)

// ErrNoToken is returned by token sources that have nothing stored.
var ErrNoToken = errors.New("no auth token available")

// StaticTokenSource always yields token. An empty token yields ErrNoToken.
func StaticTokenSource(token string) oauth2.TokenSource {
	if token == "" {
		return emptySource{}
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}

type emptySource struct{}

func (emptySource) Token() (*oauth2.Token, error) {
	return nil, ErrNoToken
}

// EnvTokenSource reads the token from an environment variable on every call.
type EnvTokenSource struct {
	Name string
}

func (s EnvTokenSource) Token() (*oauth2.Token, error) {
	token := strings.TrimSpace(os.Getenv(s.Name))
	if token == "" {
		return nil, ErrNoToken
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

// FileTokenSource reads the token saved by SaveToken on every call, so a
// fresh login is picked up without restarting the consumer.
type FileTokenSource struct {
	Path string
}

func (s FileTokenSource) Token() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoToken
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return nil, ErrNoToken
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

func SaveToken(path, token string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// ChainTokenSource returns the first token any source yields.
func ChainTokenSource(sources ...oauth2.TokenSource) oauth2.TokenSource {
	return chain(sources)
}

type chain []oauth2.TokenSource

func (c chain) Token() (*oauth2.Token, error) {
	for _, src := range c {
		tok, err := src.Token()
		if errors.Is(err, ErrNoToken) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if tok != nil && tok.AccessToken != "" {
			return tok, nil
		}
	}
	return nil, ErrNoToken
}
