package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "auth.json")

	index := uint32(3)
	key := "deadbeef"
	c := Credentials{
		Hostname:     "ilo.example.com",
		Username:     "Administrator",
		Password:     "hunter2",
		SessionIndex: &index,
		SessionKey:   &key,
	}

	require.NoError(t, c.Save(path))

	loaded, err := LoadCredentials(path)
	require.NoError(t, err)

	assert.Equal(t, c.Hostname, loaded.Hostname)
	assert.Equal(t, c.Username, loaded.Username)
	assert.Equal(t, c.Password, loaded.Password)
	require.NotNil(t, loaded.SessionIndex)
	assert.Equal(t, index, *loaded.SessionIndex)
	require.NotNil(t, loaded.SessionKey)
	assert.Equal(t, key, *loaded.SessionKey)
	assert.Nil(t, loaded.Cookie)
}

func TestLoadCredentialsMissingFile(t *testing.T) {
	_, err := LoadCredentials(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
