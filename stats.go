package shard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/tidwall/jsonc"
	"go.uber.org/zap"
)

// sniffLen is how much of a file is read before deciding whether it can be
// a descriptor.
const sniffLen = 512

// Stats summarizes a shard graph.
type Stats struct {
	Files        int   // Number of file shards
	Dicts        int   // Number of dict shards
	Tuples       int   // Number of tuple shards
	Cached       int   // File shards with a cached payload
	PayloadBytes int64 // Total size of all payload files in bytes
}

// WalkFunc is called for every shard reached by Walk. ids is the chain of
// dict ids and tuple indexes leading from the root to s.
type WalkFunc func(ids []string, s Shard) error

// Walk visits root and every shard below it, depth first. Dict children
// are visited in id order.
func Walk(root Shard, fn WalkFunc) error {
	return walk(nil, root, fn)
}

func walk(ids []string, s Shard, fn WalkFunc) error {
	if err := fn(ids, s); err != nil {
		return err
	}
	switch t := s.(type) {
	case *Dict:
		for _, id := range t.ShardIDs() {
			if err := walk(appendID(ids, id), t.shards[id], fn); err != nil {
				return err
			}
		}
	case *Tuple:
		for i, child := range t.shards {
			if err := walk(appendID(ids, strconv.Itoa(i)), child, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

func appendID(ids []string, id string) []string {
	return append(append(make([]string, 0, len(ids)+1), ids...), id)
}

// Inspect returns statistics about the graph under root. Payloads are not
// loaded; sizes come from the filesystem.
func Inspect(root Shard) (Stats, error) {
	var stats Stats
	err := Walk(root, func(ids []string, s Shard) error {
		switch t := s.(type) {
		case *FileShard:
			stats.Files++
			if t.IsCached() {
				stats.Cached++
			}
			size, err := t.Size()
			if err != nil {
				return fmt.Errorf("shard %s: %w", strings.Join(ids, "/"), err)
			}
			stats.PayloadBytes += size
		case *Dict:
			stats.Dicts++
		case *Tuple:
			stats.Tuples++
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// Orphans walks the directory tree under root and returns, sorted, every
// file that is neither a descriptor nor the payload of a descriptor found
// under root. Leftover temporary files from interrupted writes are always
// reported. Payloads referenced only by descriptors outside root are
// reported too, so root should hold a whole dataset.
func (s *Store) Orphans(root string) ([]string, error) {
	referenced := make(map[string]bool)
	var candidates []string

	err := afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Skip directories
		if info.IsDir() {
			return nil
		}

		if isTempFile(path) {
			candidates = append(candidates, path)
			return nil
		}

		d, ok := s.sniffDescriptor(path)
		if !ok {
			candidates = append(candidates, path)
			return nil
		}
		if d.Loader.Target == LoaderFile {
			if p, err := d.StringKwarg("path"); err == nil {
				referenced[payloadPath(path, p)] = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	var orphans []string
	for _, path := range candidates {
		if !referenced[filepath.Clean(path)] {
			orphans = append(orphans, path)
		}
	}
	sort.Strings(orphans)
	return orphans, nil
}

// RemoveOrphans deletes everything Orphans reports under root.
// Returns the number of files removed.
func (s *Store) RemoveOrphans(root string) (int, error) {
	orphans, err := s.Orphans(root)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, path := range orphans {
		if err := s.fs.Remove(path); err != nil {
			return count, fmt.Errorf("failed to remove orphan %s: %w", path, err)
		}
		s.logger.Info("removed orphaned file", zap.String("path", path))
		count++
	}
	return count, nil
}

// sniffDescriptor reports whether the file at path parses as a descriptor.
// Descriptors may have any name, so the decision is made on content. Files
// whose first significant byte cannot start a JSON object or a comment are
// rejected without being read in full.
func (s *Store) sniffDescriptor(path string) (*Descriptor, bool) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, false
	}
	head = bytes.TrimLeft(head[:n], " \t\r\n")
	if len(head) == 0 || (head[0] != '{' && head[0] != '/') {
		return nil, false
	}

	rest, err := io.ReadAll(f)
	if err != nil {
		return nil, false
	}
	data := append(head, rest...)

	var d Descriptor
	if err := json.Unmarshal(jsonc.ToJSON(data), &d); err != nil {
		return nil, false
	}
	if d.Validate() != nil {
		return nil, false
	}
	return &d, true
}

// isTempFile matches the temporary names used by codec.WriteFile.
func isTempFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && strings.Contains(base, ".tmp-")
}
