// Package journal keeps a log of sync outcomes per repository.
package journal

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// Entry is the outcome of one sync.
type Entry struct {
	Repository string        `json:"repository"`
	Trigger    string        `json:"trigger"`
	Status     int           `json:"status"`
	Message    string        `json:"message"`
	Bytes      int64         `json:"bytes"`
	Files      int           `json:"files"`
	Partial    bool          `json:"partial,omitempty"`
	Started    time.Time     `json:"started"`
	Duration   time.Duration `json:"duration"`
}

// Journal stores entries in a bolt database, one bucket per repository.
type Journal struct {
	db *bolt.DB
}

// unnamed collects triggers that never resolved a repository.
const unnamed = "-"

// ErrLocked is returned when another process, usually the agent, holds the
// journal.
var ErrLocked = errors.New("journal is locked by another process")

// Open opens or creates the journal at path.
func Open(path string) (*Journal, error) {
	return open(path, &bolt.Options{Timeout: time.Second})
}

// OpenReadOnly opens an existing journal for reading.
func OpenReadOnly(path string) (*Journal, error) {
	return open(path, &bolt.Options{Timeout: time.Second, ReadOnly: true})
}

func open(path string, opts *bolt.Options) (*Journal, error) {
	db, err := bolt.Open(path, 0o600, opts)
	if errors.Is(err, bolt.ErrTimeout) {
		return nil, errors.Wrapf(ErrLocked, "opening journal %s", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "opening journal %s", path)
	}
	return &Journal{db: db}, nil
}

// Close releases the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends e to the history of its repository.
func (j *Journal) Record(e Entry) error {
	bucket := e.Repository
	if bucket == "" {
		bucket = unnamed
	}
	return j.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return errors.Wrap(err, "creating bucket")
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		buf, err := json.Marshal(e)
		if err != nil {
			return err
		}
		return b.Put(itob(seq), buf)
	})
}

// History returns up to limit entries of repo, newest first. A limit <= 0
// returns everything.
func (j *Journal) History(repo string, limit int) ([]Entry, error) {
	var entries []Entry
	err := j.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(repo))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return errors.Wrapf(err, "decoding entry %d", binary.BigEndian.Uint64(k))
			}
			entries = append(entries, e)
			if limit > 0 && len(entries) == limit {
				break
			}
		}
		return nil
	})
	return entries, err
}

// Repositories lists every repository with at least one entry.
func (j *Journal) Repositories() ([]string, error) {
	var names []string
	err := j.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			names = append(names, string(name))
			return nil
		})
	})
	sort.Strings(names)
	return names, err
}

// Format renders entries one per line for terminals.
func Format(entries []Entry) string {
	var sb strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&sb, "* %s %s %d (%s)\n\t%s\n",
			e.Started.Format(time.RFC3339), e.Trigger, e.Status, e.Duration.Round(time.Millisecond), e.Message)
	}
	return sb.String()
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
