package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"ruzznotes/internal/note/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"NOTES_ADDR", "NOTES_LOCALE", "NOTES_LOG_LEVEL", "NOTES_ALLOWED_ORIGIN", "NOTES_SEED_FILE"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	assert.Equal(t, Config{Addr: ":8080", Locale: "en", LogLevel: "info", AllowedOrigin: "*"}, cfg)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("NOTES_ADDR", " :9090 ")
	t.Setenv("NOTES_LOCALE", "sv")
	t.Setenv("NOTES_SEED_FILE", "/tmp/seed.yaml")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "sv", cfg.Locale)
	assert.Equal(t, "/tmp/seed.yaml", cfg.SeedFile)
}

func TestLoadWithoutDotenvReportsMiss(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("NOTES_ADDR", "")

	cfg, err := Load()
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, ":8080", cfg.Addr)
}

func TestLoadReadsDotenv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("NOTES_LOCALE=de\n"), 0o644))
	chdir(t, dir)
	// godotenv never overrides variables that are already set.
	t.Setenv("NOTES_LOCALE", "")
	require.NoError(t, os.Unsetenv("NOTES_LOCALE"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "de", cfg.Locale)
}

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	content := `notes:
  - subject: Alpha
    content: first note
    status: in-progress
    output:
      text: done
      links: ["https://go.dev", ""]
  - subject: Beta
    content: second note
    followUp: call back
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	notes, err := LoadSeed(path)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "Alpha", notes[0].Subject)
	assert.Equal(t, model.StatusInProgress, notes[0].Status)
	assert.Equal(t, []string{"https://go.dev", ""}, notes[0].Output.Links)
	assert.Equal(t, "call back", notes[1].FollowUp)
}

func TestLoadSeedErrors(t *testing.T) {
	_, err := LoadSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("notes: [unclosed"), 0o644))
	_, err = LoadSeed(path)
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+) on older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
