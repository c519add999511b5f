package toml

import "fmt"

const currentSchemaVersion = 1

// fileSchema is the on-disk layout of the client state file: a small
// versioned string map holding the device id and last session id.
type fileSchema struct {
	Version int               `toml:"version"`
	Values  map[string]string `toml:"values"`
}

func (f *fileSchema) applyDefaults() {
	if f.Version == 0 {
		f.Version = currentSchemaVersion
	}
	if f.Values == nil {
		f.Values = map[string]string{}
	}
}

func (f *fileSchema) validateVersion() error {
	if f.Version != 0 && f.Version != currentSchemaVersion {
		return fmt.Errorf("unsupported state file version %d", f.Version)
	}
	return nil
}
