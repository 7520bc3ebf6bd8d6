package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chronicle/pkg/models"
)

func TestLoadMissingFileReturnsEmptyConfig(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Remotes)
	assert.True(t, cfg.Bump.FeaturesMinor())
	assert.True(t, cfg.Bump.BreakingMajor())
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	no := false
	original := &models.Config{
		Bump: models.BumpConfig{BreakingAlwaysBumpMajor: &no},
		Remotes: []models.Remote{
			{Provider: "github", Owner: "orhun", Repo: "chronicle", TokenEnv: "GITHUB_TOKEN"},
		},
		Fetch:     models.FetchConfig{MaxPages: 10},
		Changelog: models.ChangelogConfig{TagPattern: `^v`},
	}
	require.NoError(t, Save(original, path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
	assert.False(t, loaded.Bump.BreakingMajor())
	assert.True(t, loaded.Bump.FeaturesMinor())
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("remotes: [broken"), 0600))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestGetConfigFileEnvOverride(t *testing.T) {
	t.Setenv(EnvConfigFile, "/tmp/custom.yaml")
	assert.Equal(t, "/tmp/custom.yaml", GetConfigFile())
}

func TestEncryptDecryptRoundtrip(t *testing.T) {
	encrypted, err := Encrypt("ghp_secrettoken", "hunter2")
	require.NoError(t, err)
	assert.NotContains(t, encrypted, "secrettoken")

	decrypted, err := Decrypt(encrypted, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "ghp_secrettoken", decrypted)

	_, err = Decrypt(encrypted, "wrong")
	assert.Error(t, err)
}

func TestDecryptGarbage(t *testing.T) {
	_, err := Decrypt("not base64!!", "x")
	assert.Error(t, err)

	_, err = Decrypt("aGVsbG8=", "x") // valid base64, too short
	assert.Error(t, err)
}

func TestResolveTokenPrecedence(t *testing.T) {
	remote := models.Remote{Provider: "github", Owner: "o", Repo: "r", TokenEnv: "CHRONICLE_TEST_TOKEN"}

	t.Setenv("CHRONICLE_TEST_TOKEN", "from-env")
	assert.Equal(t, "from-env", ResolveToken(remote))

	remote.Token = "literal"
	assert.Equal(t, "literal", ResolveToken(remote))
}
