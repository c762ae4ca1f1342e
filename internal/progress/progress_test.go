package progress

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLogger_Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), "code_log.txt")
	l := New(path)
	l.Now = func() time.Time { return time.Date(2023, time.September, 8, 9, 16, 35, 0, time.Local) }

	require.NoError(t, l.Log("Preliminaries complete. Initiating ETL process"))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "2023:Sep:08 09:16:35 : Preliminaries complete. Initiating ETL process\n", string(got))
}

func TestLogger_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "code_log.txt")
	require.NoError(t, os.WriteFile(path, []byte("earlier run\n"), 0o644))

	l := New(path)
	require.NoError(t, l.Log("first"))
	require.NoError(t, l.Log("second"))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(got), "\n"), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "earlier run", lines[0])

	line := regexp.MustCompile(`^\d{4}:[A-Z][a-z]{2}:\d{2} \d{2}:\d{2}:\d{2} : (first|second)$`)
	require.Regexp(t, line, lines[1])
	require.Regexp(t, line, lines[2])
	require.True(t, strings.HasSuffix(lines[2], "second"))
}

func TestLogger_ReleasesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "code_log.txt")
	l := New(path)
	require.NoError(t, l.Log("one"))

	// the file can be moved away between writes; the next write recreates it
	require.NoError(t, os.Rename(path, filepath.Join(dir, "rotated.txt")))
	require.NoError(t, l.Log("two"))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(string(got), " : two\n"))
	require.Equal(t, path, l.Path())
}

func TestLogger_WriteError(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "no", "such", "dir", "log.txt"))
	require.Error(t, l.Log("lost"))
}
