package accessclient

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestStaticTokenSource(t *testing.T) {
	tok, err := StaticTokenSource("abc").Token()
	require.NoError(t, err)
	assert.Equal(t, "abc", tok.AccessToken)

	_, err = StaticTokenSource("").Token()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestEnvTokenSource(t *testing.T) {
	t.Setenv("FLEETDESK_TEST_TOKEN", "  from-env \n")

	tok, err := EnvTokenSource{Name: "FLEETDESK_TEST_TOKEN"}.Token()
	require.NoError(t, err)
	assert.Equal(t, "from-env", tok.AccessToken)

	t.Setenv("FLEETDESK_TEST_TOKEN", "")
	_, err = EnvTokenSource{Name: "FLEETDESK_TEST_TOKEN"}.Token()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestFileTokenSource_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	src := FileTokenSource{Path: path}

	_, err := src.Token()
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, SaveToken(path, "saved"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	tok, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "saved", tok.AccessToken)
}

func TestFileTokenSource_Blank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("\n"), 0o600))

	_, err := FileTokenSource{Path: path}.Token()
	assert.ErrorIs(t, err, ErrNoToken)
}

type failingSource struct{}

func (failingSource) Token() (*oauth2.Token, error) {
	return nil, errors.New("keyring locked")
}

func TestChainTokenSource(t *testing.T) {
	tok, err := ChainTokenSource(StaticTokenSource(""), StaticTokenSource("second")).Token()
	require.NoError(t, err)
	assert.Equal(t, "second", tok.AccessToken)

	_, err = ChainTokenSource(StaticTokenSource("")).Token()
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = ChainTokenSource(failingSource{}, StaticTokenSource("x")).Token()
	assert.EqualError(t, err, "keyring locked")
}
