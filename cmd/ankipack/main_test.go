package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/konstantinfoerster/anki-importer-go/internal/anki"
	logger "github.com/konstantinfoerster/anki-importer-go/internal/log"
	"github.com/konstantinfoerster/anki-importer-go/internal/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.SetupConsoleLogger(io.Discard)
	err := logger.SetLogLevel("warn")
	if err != nil {
		fmt.Printf("Failed to set log level %v", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()

	return test.WriteFile(t, dir, "application.yaml", fmt.Sprintf(`
logging:
  level: warn
storage:
  location: %s
`, filepath.Join(dir, "storage")))
}

func TestPackageCSV(t *testing.T) {
	dir := t.TempDir()
	source := test.WriteFile(t, dir, "notion_to_anki.csv", "Front,Back\n犬,\"dog\nいぬ\"\nshort\n猫,&lt;b&gt;cat&lt;/b&gt;\n")
	output := filepath.Join(dir, "out", "NotionToAnki.apkg")

	out, err := execute(t, "", source, "-c", writeConfig(t, dir), "-o", output)

	require.NoError(t, err)
	assert.Contains(t, out, fmt.Sprintf("SUCCESS: 2 notes packaged into %s", output))
	assert.FileExists(t, output)

	inspected, err := execute(t, "", "inspect", "--notes", output)
	require.NoError(t, err)
	assert.Contains(t, inspected, fmt.Sprintf("deck\t%d\t%s", anki.DefaultDeckID, anki.DefaultDeckName))
	assert.Contains(t, inspected, fmt.Sprintf("model\t%d\t%s\tFront,Back", anki.DefaultModelID, anki.DefaultModelName))
	assert.Contains(t, inspected, "notes\t2")
	assert.Contains(t, inspected, "cards\t2")
	assert.Contains(t, inspected, "犬 | dog<br>いぬ")
	assert.Contains(t, inspected, "猫 | <b>cat</b>")
}

func TestPackageStdin(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "stdin.apkg")

	out, err := execute(t, `[["a","b"],["c","d"]]`, "-", "-c", writeConfig(t, dir), "-o", output, "--deck-name", "Custom")

	require.NoError(t, err)
	assert.Contains(t, out, "SUCCESS: 2 notes packaged into")

	inspected, err := execute(t, "", "inspect", output)
	require.NoError(t, err)
	assert.Contains(t, inspected, fmt.Sprintf("deck\t%d\tCustom", anki.DefaultDeckID))
}

func TestPackageForcedJSON(t *testing.T) {
	dir := t.TempDir()
	source := test.WriteFile(t, dir, "cards.txt", `[["a","b"]]`)
	output := filepath.Join(dir, "json.apkg")

	out, err := execute(t, "", source, "--json", "-c", writeConfig(t, dir), "-o", output)

	require.NoError(t, err)
	assert.Contains(t, out, "SUCCESS: 1 notes packaged into")
}

func TestPackageMissingSource(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "notion_to_anki.csv")
	output := filepath.Join(dir, "NotionToAnki.apkg")

	out, err := execute(t, "", source, "-c", writeConfig(t, dir), "-o", output)

	require.NoError(t, err)
	assert.Contains(t, out, fmt.Sprintf("Error: File '%s' not found!", source))
	assert.NoFileExists(t, output)
}

func TestPackageFailure(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "NotionToAnki.apkg")
	require.NoError(t, os.WriteFile(output, []byte("previous"), 0600))

	_, err := execute(t, `{"not": "an array"}`, "-", "-c", writeConfig(t, dir), "-o", output)

	assert.ErrorContains(t, err, "fatal error during packaging")
	assert.Equal(t, "previous", string(test.FileContent(t, output)))
}

func TestPackageExplicitConfigMissing(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "", "-c", filepath.Join(dir, "missing.yaml"))

	assert.Error(t, err)
}

func TestInspectRequiresPackage(t *testing.T) {
	_, err := execute(t, "", "inspect")

	assert.Error(t, err)
}
