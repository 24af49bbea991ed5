package library

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Codec describes how a table serializes its entity type: the header line,
// the record key, and the line encode/decode pair.
type Codec[T any] struct {
	Header string
	Key    func(T) string
	Encode func(T) string
	Decode func(string) (T, error)
}

// Table is durable storage for one entity type, backed by a single
// delimited-text file with a header line. Every update is a whole-file
// rewrite: LoadAll, mutate, SaveAll. A mutex serializes that sequence per
// table, so concurrent callers within the process cannot interleave a
// read-modify-write. SaveAll is not transactional at the byte level; a
// crash mid-write can leave the file truncated.
type Table[T any] struct {
	mu    sync.Mutex
	path  string
	codec Codec[T]
}

// NewTable creates a table over the file at path. The file is not touched
// until the first operation; use EnsureExists to materialize an empty table.
func NewTable[T any](path string, codec Codec[T]) *Table[T] {
	return &Table[T]{path: path, codec: codec}
}

// Path returns the backing file path.
func (t *Table[T]) Path() string { return t.path }

// EnsureExists creates the backing file with just the header line if it does
// not exist yet. Existing contents are left alone.
func (t *Table[T]) EnsureExists() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := os.Stat(t.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", t.path, err)
	}
	if dir := filepath.Dir(t.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create table dir: %w", err)
		}
	}
	return t.saveAllLocked(nil)
}

// LoadAll decodes every record in the table. A missing file is ErrNotFound.
// A single malformed line fails the whole load; partial results are never
// returned.
func (t *Table[T]) LoadAll() ([]T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loadAllLocked()
}

// SaveAll replaces the file's full prior contents with the header and one
// line per item. This is the only durable write primitive with transactional
// shape: it fully succeeds or fails mid-write.
func (t *Table[T]) SaveAll(items []T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saveAllLocked(items)
}

// Append writes one record in append mode, creating the file (with header)
// if needed. Cheaper than SaveAll for pure inserts; performs no dedup or
// validation.
func (t *Table[T]) Append(item T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if dir := filepath.Dir(t.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create table dir: %w", err)
		}
	}
	f, err := os.OpenFile(t.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s for append: %w", t.path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat %s: %w", t.path, err)
	}
	line := t.codec.Encode(item) + "\n"
	if info.Size() == 0 {
		line = t.codec.Header + "\n" + line
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return fmt.Errorf("append to %s: %w", t.path, err)
	}
	return f.Close()
}

// FindByKey returns the first record whose key matches, or ErrNotFound.
// Linear scan over a full load; fine at the scale these tables target.
func (t *Table[T]) FindByKey(key string) (T, error) {
	var zero T
	items, err := t.LoadAll()
	if err != nil {
		return zero, err
	}
	for _, item := range items {
		if t.codec.Key(item) == key {
			return item, nil
		}
	}
	return zero, fmt.Errorf("key %q: %w", key, ErrNotFound)
}

// UpdateByKey replaces the first record whose key matches updated's key,
// then rewrites the file. If no record matches, the rewrite still happens
// and nothing changes: a silent no-op. Callers that need a miss reported
// must check existence first.
func (t *Table[T]) UpdateByKey(updated T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	items, err := t.loadAllLocked()
	if err != nil {
		return err
	}
	key := t.codec.Key(updated)
	for i, item := range items {
		if t.codec.Key(item) == key {
			items[i] = updated
			break
		}
	}
	return t.saveAllLocked(items)
}

// DeleteByKey removes every record whose key matches, then rewrites the
// file.
func (t *Table[T]) DeleteByKey(key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	items, err := t.loadAllLocked()
	if err != nil {
		return err
	}
	kept := items[:0]
	for _, item := range items {
		if t.codec.Key(item) != key {
			kept = append(kept, item)
		}
	}
	return t.saveAllLocked(kept)
}

func (t *Table[T]) loadAllLocked() ([]T, error) {
	f, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("table file %s: %w", t.path, ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", t.path, err)
	}
	defer f.Close()

	var items []T
	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		if first {
			first = false // header line
			continue
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		item, err := t.codec.Decode(line)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", t.path, err)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", t.path, err)
	}
	return items, nil
}

func (t *Table[T]) saveAllLocked(items []T) error {
	f, err := os.Create(t.path)
	if err != nil {
		return fmt.Errorf("create %s: %w", t.path, err)
	}
	w := bufio.NewWriter(f)
	fmt.Fprintln(w, t.codec.Header)
	for _, item := range items {
		fmt.Fprintln(w, t.codec.Encode(item))
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", t.path, err)
	}
	return f.Close()
}
