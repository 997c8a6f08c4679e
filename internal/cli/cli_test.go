package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBar(t *testing.T) {
	assert.Equal(t, "["+strings.Repeat(".", barWidth)+"]   0%", renderBar(-5))
	assert.Equal(t, "["+strings.Repeat("=", barWidth)+"] 100%", renderBar(150))

	half := renderBar(50)
	assert.Contains(t, half, ">")
	assert.True(t, strings.HasSuffix(half, " 50%"))
}

// run executes the root command against a fresh save directory.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("RACHAMUFFIN_HOME", home)
	t.Setenv("RACHAMUFFIN_LOG_LEVEL", "error")
	return home
}

func TestCLI_CompleteAndStatus(t *testing.T) {
	setupHome(t)

	out, err := run(t, "complete")
	require.NoError(t, err)
	assert.Contains(t, out, "Streak: 1")
	assert.Contains(t, out, "¡Misión completada! 🎯")

	out, err = run(t, "complete")
	require.NoError(t, err)
	assert.Contains(t, out, "Already completed today.")

	out, err = run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Streak:       1")
}

func TestCLI_SpendErrors(t *testing.T) {
	setupHome(t)

	_, err := run(t, "spend", "lots")
	assert.Error(t, err)

	_, err = run(t, "spend", "500")
	assert.Error(t, err)
}

func TestCLI_ResetNeedsConfirmation(t *testing.T) {
	setupHome(t)
	_, err := run(t, "complete")
	require.NoError(t, err)

	_, err = run(t, "reset")
	assert.Error(t, err)

	out, err := run(t, "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "All progress deleted.")
	resetConfirm = false
}

func TestCLI_ExportImport(t *testing.T) {
	home := setupHome(t)
	_, err := run(t, "complete")
	require.NoError(t, err)

	file := filepath.Join(home, "backup.json")
	_, err = run(t, "export", "-o", file)
	require.NoError(t, err)
	exportOut = ""

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"version": "3"`)

	setupHome(t)
	out, err := run(t, "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported")

	out, err = run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Streak:       1")
}

func TestCLI_RegisterAndStreakType(t *testing.T) {
	setupHome(t)

	out, err := run(t, "register", "ana", "-p", "secreto")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as ana")

	out, err = run(t, "streak-type", "reading")
	require.NoError(t, err)
	assert.Contains(t, out, "Now tracking lectura")

	_, err = run(t, "streak-type", "custom")
	assert.Error(t, err, "custom needs a description")
}

func TestCLI_AvatarPresets(t *testing.T) {
	setupHome(t)

	out, err := run(t, "avatar", "preset", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No presets saved.")

	out, err = run(t, "avatar", "preset", "save", "gato")
	require.NoError(t, err)
	assert.Contains(t, out, "¡Preset guardado! ⭐")
	i := strings.Index(out, "saved as ")
	require.GreaterOrEqual(t, i, 0, out)
	id := strings.Fields(out[i+len("saved as "):])[0]

	out, err = run(t, "avatar", "random")
	require.NoError(t, err)
	assert.Contains(t, out, "¡Avatar aleatorio aplicado! 🎲")

	out, err = run(t, "avatar", "preset", "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "gato")

	out, err = run(t, "avatar", "preset", "load", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Avatar saved: Hero (adventurer)")

	_, err = run(t, "avatar", "preset", "load", "missing")
	assert.Error(t, err)
}
