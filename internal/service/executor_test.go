package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/photodedup/internal/domain"
	"github.com/mmcdole/photodedup/internal/log"
	"github.com/mmcdole/photodedup/internal/mediaserver/immich"
)

type call struct {
	Op  string
	IDs []string
}

// fakeAssets records calls and fails the operations listed in failOn
type fakeAssets struct {
	mu     sync.Mutex
	calls  []call
	failOn map[string]bool
}

func (f *fakeAssets) do(op string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{Op: op, IDs: append([]string(nil), ids...)})
	if f.failOn[op] {
		return &domain.RequestError{Method: "X", Path: "/api/" + op, StatusCode: 500, Kind: domain.ErrUnexpectedStatus}
	}
	return nil
}

func (f *fakeAssets) DeleteAssets(_ context.Context, ids []string) error {
	return f.do("delete", ids)
}

func (f *fakeAssets) ClearDuplicate(_ context.Context, ids []string) error {
	return f.do("clear", ids)
}

func (f *fakeAssets) CreateStack(_ context.Context, ids []string) (*domain.Stack, error) {
	if err := f.do("stack", ids); err != nil {
		return nil, err
	}
	return &domain.Stack{ID: "stack-1", PrimaryAssetID: ids[0]}, nil
}

type memJournal struct {
	records []domain.ActionRecord
}

func (m *memJournal) Record(rec domain.ActionRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func sized(id string, size int64) domain.Asset {
	return domain.Asset{ID: id, ExifInfo: &domain.ExifInfo{FileSizeInByte: size}}
}

func TestDeduplicateKeepsLargest(t *testing.T) {
	repo := &fakeAssets{}
	journal := &memJournal{}
	exec := NewExecutor(repo, journal, nil, log.NullLogger())

	g := domain.DuplicateGroup{DuplicateID: "d1", Assets: []domain.Asset{
		sized("a", 100), sized("b", 500), sized("c", 200),
	}}

	outcome := exec.Deduplicate(context.Background(), g)
	require.True(t, outcome.OK())
	assert.Equal(t, []call{
		{Op: "delete", IDs: []string{"c", "a"}},
		{Op: "clear", IDs: []string{"b"}},
	}, repo.calls)

	require.Len(t, journal.records, 2)
	assert.Equal(t, domain.ActionDeleteAssets, journal.records[0].Kind)
	assert.True(t, journal.records[0].OK)
	assert.Equal(t, domain.ActionClearDuplicate, journal.records[1].Kind)
}

func TestDeduplicateDeleteFailureSkipsClearAndContinues(t *testing.T) {
	repo := &fakeAssets{failOn: map[string]bool{"delete": true}}
	var failures []Outcome
	exec := NewExecutor(repo, nil, func(o Outcome) { failures = append(failures, o) }, log.NullLogger())

	groups := []domain.DuplicateGroup{
		{DuplicateID: "d1", Assets: []domain.Asset{sized("a", 1), sized("b", 2)}},
		{DuplicateID: "d2", Assets: []domain.Asset{sized("c", 3), sized("d", 4)}},
	}

	var progress [][2]int
	outcomes := exec.DeduplicateAll(context.Background(), groups, func(done, total int) {
		progress = append(progress, [2]int{done, total})
	})

	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.False(t, o.OK())
		assert.Equal(t, domain.ActionDeleteAssets, o.FailedStep)
	}

	// both groups attempted, neither reached the clear step
	assert.Equal(t, []call{
		{Op: "delete", IDs: []string{"a"}},
		{Op: "delete", IDs: []string{"c"}},
	}, repo.calls)
	assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, progress)

	require.Len(t, failures, 2)
	assert.Contains(t, failures[0].Message(), "Failed to delete assets for d1:")
	assert.Contains(t, failures[1].Message(), "Failed to delete assets for d2:")
}

func TestDeduplicateLoneAssetOnlyClears(t *testing.T) {
	repo := &fakeAssets{}
	journal := &memJournal{}
	exec := NewExecutor(repo, journal, nil, log.NullLogger())

	outcome := exec.Deduplicate(context.Background(), domain.DuplicateGroup{
		DuplicateID: "d1", Assets: []domain.Asset{sized("a", 1)},
	})

	require.True(t, outcome.OK())
	assert.Equal(t, []call{{Op: "clear", IDs: []string{"a"}}}, repo.calls)
	require.Len(t, journal.records, 1)
	assert.Equal(t, domain.ActionClearDuplicate, journal.records[0].Kind)
}

func TestDeduplicateClearFailure(t *testing.T) {
	repo := &fakeAssets{failOn: map[string]bool{"clear": true}}
	journal := &memJournal{}
	exec := NewExecutor(repo, journal, nil, log.NullLogger())

	outcome := exec.Deduplicate(context.Background(), domain.DuplicateGroup{
		DuplicateID: "d1", Assets: []domain.Asset{sized("a", 1), sized("b", 2)},
	})

	assert.False(t, outcome.OK())
	assert.Equal(t, domain.ActionClearDuplicate, outcome.FailedStep)
	assert.Len(t, repo.calls, 2)

	require.Len(t, journal.records, 2)
	assert.True(t, journal.records[0].OK)
	assert.False(t, journal.records[1].OK)
	assert.NotEmpty(t, journal.records[1].Error)
}

func TestStackClearsAllAssets(t *testing.T) {
	repo := &fakeAssets{}
	journal := &memJournal{}
	exec := NewExecutor(repo, journal, nil, log.NullLogger())

	outcome := exec.Stack(context.Background(), domain.DuplicateGroup{
		DuplicateID: "d1", Assets: []domain.Asset{{ID: "a"}, {ID: "b"}},
	})

	require.True(t, outcome.OK())
	assert.Equal(t, []call{
		{Op: "stack", IDs: []string{"a", "b"}},
		{Op: "clear", IDs: []string{"a", "b"}},
	}, repo.calls)
	require.Len(t, journal.records, 2)
	assert.Equal(t, "stack-1", journal.records[0].StackID)
}

func TestStackFailureSkipsClear(t *testing.T) {
	repo := &fakeAssets{failOn: map[string]bool{"stack": true}}
	exec := NewExecutor(repo, nil, nil, log.NullLogger())

	outcomes := exec.StackAll(context.Background(), []domain.DuplicateGroup{
		{DuplicateID: "d1", Assets: []domain.Asset{{ID: "a"}, {ID: "b"}}},
		{DuplicateID: "d2", Assets: []domain.Asset{{ID: "c"}, {ID: "d"}}},
	}, nil)

	require.Len(t, outcomes, 2)
	assert.Equal(t, 0, CountOK(outcomes))
	assert.Equal(t, domain.ActionCreateStack, outcomes[0].FailedStep)
	assert.Equal(t, []call{
		{Op: "stack", IDs: []string{"a", "b"}},
		{Op: "stack", IDs: []string{"c", "d"}},
	}, repo.calls)

	var reqErr *domain.RequestError
	assert.True(t, errors.As(outcomes[0].Err, &reqErr))
	assert.Contains(t, outcomes[0].Message(), "Failed to stack assets for d1:")
}

func TestOutcomeMessageEmptyWhenOK(t *testing.T) {
	assert.Empty(t, Outcome{DuplicateID: "d"}.Message())
}

// TestExecutorAgainstServer drives the executor through the real HTTP client.
// The first delete returns 500; the second group must still be processed.
func TestExecutorAgainstServer(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	deletes := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, r.Method+" "+r.URL.Path)

		switch {
		case r.Method == http.MethodDelete:
			deletes++
			if deletes == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id": "s1", "primaryAssetId": "e"}`))
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer server.Close()

	client := immich.NewClient(server.URL, "key", 0, log.NullLogger())
	exec := NewExecutor(client, nil, nil, log.NullLogger())
	ctx := context.Background()

	dedupe := exec.DeduplicateAll(ctx, []domain.DuplicateGroup{
		{DuplicateID: "d1", Assets: []domain.Asset{sized("a", 1), sized("b", 2)}},
		{DuplicateID: "d2", Assets: []domain.Asset{sized("c", 1), sized("d", 2)}},
	}, nil)
	stacks := exec.StackAll(ctx, []domain.DuplicateGroup{
		{DuplicateID: "d3", Assets: []domain.Asset{{ID: "e"}, {ID: "f"}}},
	}, nil)

	assert.Equal(t, 1, CountOK(dedupe))
	assert.ErrorIs(t, dedupe[0].Err, domain.ErrUnexpectedStatus)
	assert.Equal(t, 1, CountOK(stacks))
	assert.Equal(t, []string{
		"DELETE /api/assets",
		"DELETE /api/assets",
		"PUT /api/assets",
		"POST /api/stacks",
		"PUT /api/assets",
	}, seen)
}
