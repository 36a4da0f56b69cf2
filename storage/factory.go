package storage

import "fmt"

// NewStore builds a backend by name. Kind "memory" ignores path; kind
// "sqlite" opens or creates the database file at path.
func NewStore(kind, path string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		if path == "" {
			return nil, fmt.Errorf("sqlite store requires a database path")
		}
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown store kind %q", kind)
	}
}

// CloseIfSupported closes backends that hold external resources.
func CloseIfSupported(s Store) error {
	if closer, ok := s.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
