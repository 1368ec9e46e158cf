package comments

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"
)

var (
	threadPrefix = []byte("thread/")
	// '0' is the byte after '/', so it bounds the prefix range.
	threadUpper = []byte("thread0")
)

// Pebble stores each thread under thread/<ordinal> as a JSON array.
type Pebble struct {
	db *pebble.DB
}

func NewPebble(dir string) (*Pebble, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble at %s: %w", dir, err)
	}
	return &Pebble{db: db}, nil
}

func (p *Pebble) Name() string { return "pebble" }

func (p *Pebble) Load() (Threads, error) {
	iter, err := p.db.NewIter(&pebble.IterOptions{LowerBound: threadPrefix, UpperBound: threadUpper})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	t := make(Threads)
	for iter.First(); iter.Valid(); iter.Next() {
		key := string(iter.Key()[len(threadPrefix):])
		var comments []string
		if err := json.Unmarshal(iter.Value(), &comments); err != nil {
			return nil, fmt.Errorf("decode thread %s: %w", key, err)
		}
		t[key] = comments
	}
	return t, iter.Error()
}

func (p *Pebble) Persist(threads Threads, key string) error {
	k := append(append([]byte{}, threadPrefix...), key...)
	thread, ok := threads[key]
	if !ok {
		return p.db.Delete(k, pebble.Sync)
	}
	v, err := json.Marshal(thread)
	if err != nil {
		return err
	}
	return p.db.Set(k, v, pebble.Sync)
}

func (p *Pebble) Close() error {
	return p.db.Close()
}
