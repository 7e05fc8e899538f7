package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestYAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qtrader.yaml")

	orig := Default()
	orig.Agent.Gamma = 0.95
	orig.Journal.Type = "sqlite"
	orig.Journal.DBPath = "./runs.sqlite"
	require.NoError(t, orig.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, orig, loaded)
}

func TestJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qtrader.json")

	orig := Default()
	require.NoError(t, orig.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, orig, loaded)
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("journal:\n  type: parchment\n"), 0644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestValidateJournal(t *testing.T) {
	c := Default()
	c.Journal = JournalConfig{Type: "csv"}
	assert.Error(t, c.Validate())

	c.Journal = JournalConfig{Type: "sqlite"}
	assert.Error(t, c.Validate())

	c.Journal = JournalConfig{Type: "none"}
	assert.NoError(t, c.Validate())
}

func TestValidateSplitDate(t *testing.T) {
	c := Default()
	c.Data.SplitDate = "01/02/2016"
	assert.Error(t, c.Validate())
}
