package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int         `toml:"version"`
	Jars    []jarSchema `toml:"jars"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported cookie jar schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type jarSchema struct {
	Conversation int64          `toml:"conversation"`
	SavedAt      string         `toml:"saved_at"`
	Cookies      []cookieSchema `toml:"cookies"`
}

type cookieSchema struct {
	Name     string `toml:"name"`
	Value    string `toml:"value"`
	Domain   string `toml:"domain"`
	Path     string `toml:"path"`
	Expires  string `toml:"expires,omitempty"`
	HTTPOnly bool   `toml:"http_only"`
	Secure   bool   `toml:"secure"`
}
