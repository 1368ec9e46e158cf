package comments

import "fmt"

// NewBackend opens the backend named kind ("json", "sqlite" or "pebble")
// at path.
func NewBackend(kind, path string) (Backend, error) {
	switch kind {
	case "", "json":
		return NewJSONFile(path), nil
	case "sqlite":
		return NewSQLite(path)
	case "pebble":
		return NewPebble(path)
	default:
		return nil, fmt.Errorf("unknown comment backend %q", kind)
	}
}
