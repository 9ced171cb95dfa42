package store

import (
	"fmt"
	"os"
)

// WriteDocument atomically writes any JSON-marshalable document. Used for
// the macro and global files, which share the snapshot store's write-once /
// read-only contract but have independent lifecycles.
func WriteDocument(path string, v any) error {
	return writeJSONFile(path, v)
}

// ReadRaw returns the file bytes verbatim so the API can serve persisted
// documents without a decode/encode round trip. os.IsNotExist on the error
// distinguishes "no data yet" from a real failure.
func ReadRaw(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
