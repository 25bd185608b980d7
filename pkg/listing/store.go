package listing

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v4"
)

// LoadSnapshot reads a listing snapshot from a YAML file.
func LoadSnapshot(path string) (Snapshot, error) {
	var s Snapshot
	if err := decodeFile(path, &s); err != nil {
		return Snapshot{}, err
	}
	if err := s.Validate(); err != nil {
		return Snapshot{}, fmt.Errorf("validation failed for snapshot %s: %w", path, err)
	}
	return s, nil
}

// LoadHistory reads the post history from a YAML file. A missing file is an
// empty history.
func LoadHistory(path string) (History, error) {
	var h History
	if path == "" {
		return h, nil
	}
	err := decodeFile(path, &h)
	if errors.Is(err, fs.ErrNotExist) {
		return History{}, nil
	}
	return h, err
}

func decodeFile(path string, out any) error {
	fh, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fh.Close()

	dec := yaml.NewDecoder(fh)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// SaveSnapshot validates s and writes it to path, replacing any previous
// snapshot.
func SaveSnapshot(path string, s Snapshot) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed for snapshot %s: %w", path, err)
	}
	return encodeFile(path, s)
}

// AppendHistory adds post to the end of the history at path. When keep is
// positive only the last keep posts are retained.
func AppendHistory(path string, post RecentPost, keep int) error {
	h, err := LoadHistory(path)
	if err != nil {
		return err
	}
	h.Posts = append(h.Posts, post)
	if keep > 0 && len(h.Posts) > keep {
		h.Posts = h.Posts[len(h.Posts)-keep:]
	}
	return encodeFile(path, h)
}

// encodeFile writes v as YAML through a temporary file so readers never see
// a partial document.
func encodeFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(f)
	if err := enc.Encode(v); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
