package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/logshare/backend/internal/logid"
	"github.com/logshare/backend/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

const tempPrefix = ".tmp-"

// staleTempAge is how old an orphaned temp file must be before a sweep removes it.
const staleTempAge = time.Hour

// localRecord is the on-disk payload. LastAccessedAt lives in the file mtime
// so that renewal never rewrites the body.
type localRecord struct {
	CreatedAt time.Time `msgpack:"c"`
	Body      []byte    `msgpack:"b"`
}

// LocalStore implements Store using one file per record on the local filesystem.
// Creation writes a temp file and hard-links it into place, so a record appears
// atomically and an existing id is never overwritten.
type LocalStore struct {
	dir  string
	opts Options
}

// NewLocalStore creates a new LocalStore rooted at dir.
func NewLocalStore(dir string, opts Options) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &LocalStore{dir: dir, opts: opts.withDefaults()}, nil
}

// path returns the record path, or false when id could never name a record.
func (s *LocalStore) path(id string) (string, bool) {
	if _, err := logid.Validate(id); err != nil {
		return "", false
	}
	return filepath.Join(s.dir, id), true
}

// Exists reports whether a record file is present.
func (s *LocalStore) Exists(ctx context.Context, id string) (bool, error) {
	path, ok := s.path(id)
	if !ok {
		return false, nil
	}
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, &OpError{Op: "exists", ID: id, Err: err}
	}
}

// Create persists body under a newly claimed identifier.
func (s *LocalStore) Create(ctx context.Context, body []byte) (*models.LogRecord, error) {
	if err := s.opts.Limits.Check(body); err != nil {
		return nil, err
	}

	now := s.opts.Now()
	tmp, err := s.writeTemp(localRecord{CreatedAt: now, Body: body}, now)
	if err != nil {
		return nil, &OpError{Op: "create", Err: err}
	}
	defer os.Remove(tmp)

	id, err := claim(ctx, s.opts, func(id string) (bool, error) {
		err := os.Link(tmp, filepath.Join(s.dir, id))
		if errors.Is(err, os.ErrExist) {
			return false, nil
		}
		return err == nil, err
	})
	if err != nil {
		return nil, err
	}

	return &models.LogRecord{
		ID:             id,
		Body:           body,
		CreatedAt:      now,
		LastAccessedAt: now,
	}, nil
}

func (s *LocalStore) writeTemp(rec localRecord, mtime time.Time) (string, error) {
	f, err := os.CreateTemp(s.dir, tempPrefix+"*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	name := f.Name()

	if err := msgpack.NewEncoder(f).Encode(&rec); err != nil {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("encoding record: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("syncing record: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("closing record: %w", err)
	}
	if err := os.Chtimes(name, mtime, mtime); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("stamping record: %w", err)
	}
	return name, nil
}

// Read loads a record. Stat and read go through the same open handle, so a
// concurrent delete either happens before the open (not found) or not at all.
func (s *LocalStore) Read(ctx context.Context, id string) (*models.LogRecord, error) {
	path, ok := s.path(id)
	if !ok {
		return nil, ErrNotFound
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &OpError{Op: "read", ID: id, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &OpError{Op: "read", ID: id, Err: err}
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &OpError{Op: "read", ID: id, Err: err}
	}

	var rec localRecord
	if err := msgpack.NewDecoder(bytes.NewReader(data)).Decode(&rec); err != nil {
		return nil, &OpError{Op: "decode", ID: id, Err: err}
	}

	return &models.LogRecord{
		ID:             id,
		Body:           rec.Body,
		CreatedAt:      rec.CreatedAt,
		LastAccessedAt: info.ModTime(),
	}, nil
}

// Renew bumps the file mtime.
func (s *LocalStore) Renew(ctx context.Context, id string) error {
	path, ok := s.path(id)
	if !ok {
		return nil
	}
	now := s.opts.Now()
	err := os.Chtimes(path, now, now)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return &OpError{Op: "renew", ID: id, Err: err}
}

// Delete removes a record file.
func (s *LocalStore) Delete(ctx context.Context, id string) (bool, error) {
	path, ok := s.path(id)
	if !ok {
		return false, nil
	}
	return s.remove(id, path)
}

func (s *LocalStore) remove(id, path string) (bool, error) {
	err := os.Remove(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, &OpError{Op: "delete", ID: id, Err: err}
	}
}

// SweepExpired removes records whose mtime is older than the retention window,
// plus temp files left behind by interrupted creates.
func (s *LocalStore) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, &OpError{Op: "sweep", Err: err}
	}

	removed := 0
	for _, de := range dirEntries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if de.IsDir() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue // removed since ReadDir
		}

		name := de.Name()
		if strings.HasPrefix(name, tempPrefix) {
			if now.Sub(info.ModTime()) > staleTempAge {
				os.Remove(filepath.Join(s.dir, name))
			}
			continue
		}
		if now.Sub(info.ModTime()) <= s.opts.Retention {
			continue
		}

		path, ok := s.path(name)
		if !ok {
			continue
		}
		ok, err = s.remove(name, path)
		if err != nil {
			return removed, err
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}

// Close is a no-op for the filesystem backend.
func (s *LocalStore) Close() error {
	return nil
}
