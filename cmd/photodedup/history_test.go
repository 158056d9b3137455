package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/photodedup/internal/journal"
	"github.com/mmcdole/photodedup/internal/ui"
)

func recordedJournal(t *testing.T) (path, runID string) {
	t.Helper()
	_, server := newFakeServer(t)
	cfg := testConfig(server.URL)
	cfg.Run.AssumeYes = true
	cfg.Journal.File = filepath.Join(t.TempDir(), "journal.db")

	console := ui.NewConsoleWriter(strings.NewReader(""), &bytes.Buffer{}, false)
	require.NoError(t, run(context.Background(), cfg, console))

	j, err := journal.Open(cfg.Journal.File)
	require.NoError(t, err)
	runs, err := j.Runs()
	require.NoError(t, err)
	require.NoError(t, j.Close())
	require.Len(t, runs, 1)
	return cfg.Journal.File, runs[0].ID
}

func executeHistory(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(append([]string{"history"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestHistoryListsRuns(t *testing.T) {
	path, runID := recordedJournal(t)

	out, err := executeHistory(t, "--journal", path)
	require.NoError(t, err)
	assert.Contains(t, out, runID)
	assert.Contains(t, out, "dedupe 1, stack 1")
}

func TestHistoryShowsRunEntries(t *testing.T) {
	path, runID := recordedJournal(t)

	out, err := executeHistory(t, "--journal", path, runID)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "delete_assets")
	assert.Contains(t, lines[0], "dup-1 [small] ok")
	assert.Contains(t, lines[1], "clear_duplicate")
	assert.Contains(t, lines[2], "create_stack")
	assert.Contains(t, lines[3], "raw-1 [raw, jpg] ok")
}

func TestHistoryUnknownRun(t *testing.T) {
	path, _ := recordedJournal(t)

	_, err := executeHistory(t, "--journal", path, "nope")
	assert.ErrorContains(t, err, "no changes recorded for run nope")
}

func TestHistoryMissingJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")

	_, err := executeHistory(t, "--journal", path)
	require.Error(t, err)
	assert.NoFileExists(t, path)

	_, err = executeHistory(t)
	assert.ErrorContains(t, err, "no journal configured")
}
