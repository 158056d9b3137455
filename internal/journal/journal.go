// Package journal keeps an append-only audit trail of the changes a run made.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/mmcdole/photodedup/internal/domain"
)

// Bucket names
var (
	bucketRuns    = []byte("runs")
	bucketActions = []byte("actions")
)

const runIDLayout = "20060102T150405.000000000Z"

// Run summarizes one invocation that reached the execute phase
type Run struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"startedAt"`
	Dedup     int       `json:"dedup"`
	Stack     int       `json:"stack"`
}

// BoltJournal implements domain.Journal using BoltDB.
type BoltJournal struct {
	db    *bolt.DB
	runID string
	now   func() time.Time
}

// Open opens or creates the journal database at path
func Open(path string) (*BoltJournal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketRuns, bucketActions} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltJournal{db: db, now: time.Now}, nil
}

func (j *BoltJournal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Begin starts a new run; subsequent records are attributed to it
func (j *BoltJournal) Begin(dedup, stack int) (string, error) {
	started := j.now().UTC()
	run := Run{
		ID:        started.Format(runIDLayout),
		StartedAt: started,
		Dedup:     dedup,
		Stack:     stack,
	}

	data, err := json.Marshal(run)
	if err != nil {
		return "", err
	}
	err = j.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRuns).Put([]byte(run.ID), data)
	})
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}

	j.runID = run.ID
	return run.ID, nil
}

// Record appends an action to the current run
func (j *BoltJournal) Record(rec domain.ActionRecord) error {
	if j.runID == "" {
		return fmt.Errorf("journal: no run started")
	}
	rec.RunID = j.runID
	if rec.At.IsZero() {
		rec.At = j.now().UTC()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketActions)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(actionKey(j.runID, seq), data)
	})
}

// Entries returns the actions of a run in the order they were recorded
func (j *BoltJournal) Entries(runID string) ([]domain.ActionRecord, error) {
	var records []domain.ActionRecord
	prefix := runID + ":"

	err := j.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketActions).Cursor()
		for k, v := c.Seek([]byte(prefix)); k != nil && strings.HasPrefix(string(k), prefix); k, v = c.Next() {
			var rec domain.ActionRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("corrupt journal entry %s: %w", k, err)
			}
			records = append(records, rec)
		}
		return nil
	})
	return records, err
}

// Runs returns all recorded runs, oldest first
func (j *BoltJournal) Runs() ([]Run, error) {
	var runs []Run
	err := j.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRuns).ForEach(func(k, v []byte) error {
			var run Run
			if err := json.Unmarshal(v, &run); err != nil {
				return fmt.Errorf("corrupt journal run %s: %w", k, err)
			}
			runs = append(runs, run)
			return nil
		})
	})
	return runs, err
}

// actionKey orders actions by run, then by the bucket-wide sequence
func actionKey(runID string, seq uint64) []byte {
	return []byte(fmt.Sprintf("%s:%020d", runID, seq))
}

// Discard is a journal that drops every record
type Discard struct{}

func (Discard) Record(domain.ActionRecord) error { return nil }
