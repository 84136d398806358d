package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ofrenda/core/internal/entity"
)

// writeTestConfig points the CLI at a temp database and returns the config
// file path.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf("db_path: %s\nsnapshot_path: %s\n",
		filepath.Join(dir, "test.db"), filepath.Join(dir, "snapshot.json"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// runCommand executes the root command with args and captures stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestIsValidFormat(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))
	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
}

func TestRootCommand_RejectsInvalidFormat(t *testing.T) {
	_, err := runCommand(t, "stats", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestMemorialAddAndList(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := runCommand(t, "memorial", "add",
		"--config", cfg, "--format", "json",
		"--name", "Juan García", "--relationship", "padre", "--level", "1")
	require.NoError(t, err, out)

	var added entity.Memorial
	require.NoError(t, json.Unmarshal([]byte(out), &added))
	assert.Equal(t, "Juan García", added.Name)
	assert.Equal(t, entity.SyncStatusLocal, added.SyncStatus)
	assert.NotEmpty(t, added.ID)

	out, err = runCommand(t, "memorial", "list", "--config", cfg, "--format", "json")
	require.NoError(t, err, out)

	var listed []entity.Memorial
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, added.ID, listed[0].ID)

	// Level filter misses.
	out, err = runCommand(t, "memorial", "list", "--config", cfg, "--format", "json", "--level", "3")
	require.NoError(t, err, out)
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	assert.Empty(t, listed)
}

func TestMemorialAdd_ValidationFailure(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := runCommand(t, "memorial", "add",
		"--config", cfg,
		"--name", "<b></b>", "--relationship", "padre")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name cannot be empty after sanitization")
}

func TestOfferingPlaceAndList(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := runCommand(t, "memorial", "add",
		"--config", cfg, "--format", "json",
		"--name", "Juan García", "--relationship", "padre")
	require.NoError(t, err, out)
	var m entity.Memorial
	require.NoError(t, json.Unmarshal([]byte(out), &m))

	out, err = runCommand(t, "offering", "place",
		"--config", cfg, "--format", "json",
		"--type", "cempasuchil", "--memorial", m.ID, "--x", "1.5")
	require.NoError(t, err, out)

	var placed entity.VirtualOffering
	require.NoError(t, json.Unmarshal([]byte(out), &placed))
	assert.Equal(t, entity.OfferingCempasuchil, placed.Type)
	assert.Equal(t, 1.5, placed.Position.X)

	out, err = runCommand(t, "offering", "list",
		"--config", cfg, "--format", "json", "--memorial", m.ID)
	require.NoError(t, err, out)
	var listed []entity.VirtualOffering
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, placed.ID, listed[0].ID)
}

func TestOfferingPlace_UnknownType(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := runCommand(t, "offering", "place", "--config", cfg, "--type", "pizza")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not recognized")
}

func TestExportImportRoundTrip(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := runCommand(t, "memorial", "add",
		"--config", cfg, "--format", "json",
		"--name", "Juan García", "--relationship", "padre")
	require.NoError(t, err, out)

	exportPath := filepath.Join(t.TempDir(), "export.json")
	out, err = runCommand(t, "export", "--config", cfg, "--out", exportPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "exported 1 memorials")

	// Import into a fresh database.
	cfg2 := writeTestConfig(t)

	_, err = runCommand(t, "import", exportPath, "--config", cfg2)
	require.Error(t, err, "import without --yes must refuse")

	out, err = runCommand(t, "import", exportPath, "--config", cfg2, "--yes")
	require.NoError(t, err, out)
	assert.Contains(t, out, "imported 1 memorials")

	out, err = runCommand(t, "memorial", "list", "--config", cfg2, "--format", "json")
	require.NoError(t, err, out)
	var listed []entity.Memorial
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Juan García", listed[0].Name)
}

func TestImport_RejectsBadShape(t *testing.T) {
	cfg := writeTestConfig(t)

	badPath := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(badPath, []byte(`{"memorials": []}`), 0644))

	_, err := runCommand(t, "import", badPath, "--config", cfg, "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid import data format")
}

func TestStats(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := runCommand(t, "memorial", "add",
		"--config", cfg,
		"--name", "Juan García", "--relationship", "padre", "--level", "1")
	require.NoError(t, err, out)

	out, err = runCommand(t, "stats", "--config", cfg)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Memorials:     1")
	assert.Contains(t, out, "level 1:     1")

	out, err = runCommand(t, "stats", "--config", cfg, "--format", "json")
	require.NoError(t, err, out)
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, float64(1), payload["totalMemorials"])
}
