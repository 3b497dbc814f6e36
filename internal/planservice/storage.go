package planservice

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// store reads and writes a Plan to storage_path as JSON, rewriting the file
// atomically (write to a temp file, then rename) so a crash mid-write never
// leaves a torn file on disk (spec.md §6.4).
type store struct{}

func (store) load(path string) (Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Plan{}, fmt.Errorf("%w: %s", ErrPlanNotFound, path)
		}
		return Plan{}, fmt.Errorf("%w: reading %s: %v", ErrToolError, path, err)
	}
	var p Plan
	if err := json.Unmarshal(raw, &p); err != nil {
		return Plan{}, fmt.Errorf("%w: decoding %s: %v", ErrToolError, path, err)
	}
	if p.OriginalFileSnapshots == nil {
		p.OriginalFileSnapshots = make(map[string]string)
	}
	return p, nil
}

func (store) save(p Plan) error {
	if p.OriginalFileSnapshots == nil {
		p.OriginalFileSnapshots = make(map[string]string)
	}
	raw, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding plan %s: %v", ErrToolError, p.ID, err)
	}
	dir := filepath.Dir(p.StoragePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrToolError, dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".plan-*.json.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %v", ErrToolError, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: writing temp file: %v", ErrToolError, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: closing temp file: %v", ErrToolError, err)
	}
	if err := os.Rename(tmpPath, p.StoragePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: renaming into place: %v", ErrToolError, err)
	}
	return nil
}
