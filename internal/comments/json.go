package comments

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/eliseohh/confessbot/internal/logger"
)

// JSONFile stores every thread in one pretty-printed JSON document and
// rewrites the whole document on each mutation.
type JSONFile struct {
	path string
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

func (j *JSONFile) Name() string { return "json" }

func (j *JSONFile) Load() (Threads, error) {
	b, err := os.ReadFile(j.path)
	if err != nil {
		return nil, err
	}
	logger.Debug("comment_file_read", "path", j.path, "size", humanize.Bytes(uint64(len(b))))

	var t Threads
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("decode %s: %w", j.path, err)
	}
	if t == nil {
		t = make(Threads)
	}
	return t, nil
}

func (j *JSONFile) Persist(threads Threads, _ string) error {
	b, err := encodeThreads(threads)
	if err != nil {
		return err
	}
	return writeFileAtomic(j.path, b)
}

func (j *JSONFile) Close() error { return nil }
