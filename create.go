package shard

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gophersatwork/shard/codec"
)

// CreateFile saves data as a payload at path and writes a descriptor for
// it at uri. A relative path is taken relative to the descriptor's
// directory and recorded as given, so the pair can be moved together.
//
// The payload is written first and the descriptor second, each atomically.
// The pair is not written as a unit: if the descriptor write fails, a
// payload this call created is removed again, but a payload it replaced
// cannot be restored.
func (s *Store) CreateFile(data any, uri, path string, overwrite bool) (*FileShard, error) {
	descPath, err := PathFromURI(uri)
	if err != nil {
		return nil, err
	}
	full := payloadPath(descPath, path)
	if full == descPath {
		return nil, fmt.Errorf("%w: payload and descriptor share path %s", ErrConflict, full)
	}

	saver, ext, err := s.registry.SaverFor(full)
	if err != nil {
		return nil, err
	}
	loader, err := s.registry.FindLoader(ext)
	if err != nil {
		return nil, err
	}

	// Refuse early when the descriptor cannot be written, so a conflict
	// does not leave a fresh payload behind.
	if _, err := codec.CheckTarget(s.fs, descPath, overwrite); err != nil {
		return nil, fmt.Errorf("descriptor %s: %w", uri, err)
	}
	existed, err := codec.CheckTarget(s.fs, full, overwrite)
	if err != nil {
		return nil, err
	}

	if err := saver.Save(s.fs, full, data, overwrite); err != nil {
		return nil, fmt.Errorf("failed to save payload for %s: %w", uri, err)
	}

	var digest string
	if s.digest != "" {
		if digest, err = fileDigest(s.fs, full, s.digest); err != nil {
			s.removeOrphan(full, existed)
			return nil, err
		}
	}

	f := newFileShard(s.fs, full, ext, loader, uri, digest)
	f.recorded = path
	d, err := DescribeFile(f)
	if err != nil {
		s.removeOrphan(full, existed)
		return nil, err
	}
	if err := s.writeDescriptor(descPath, d, overwrite); err != nil {
		s.removeOrphan(full, existed)
		return nil, fmt.Errorf("shard %s: %w", uri, err)
	}

	s.logger.Debug("created file shard",
		zap.String("uri", uri),
		zap.String("path", full),
		zap.String("extension", ext),
		zap.String("digest", digest))
	return f, nil
}

// CreateDict writes a descriptor at uri for a Dict over children. Every
// child must already have a URI.
func (s *Store) CreateDict(children map[string]Shard, uri string, overwrite bool) (*Dict, error) {
	d, err := NewDict(children)
	if err != nil {
		return nil, err
	}
	if err := s.persistAt(d, uri, overwrite); err != nil {
		return nil, err
	}
	d.uri = uri

	s.logger.Debug("created dict shard", zap.String("uri", uri), zap.Int("shards", d.Len()))
	return d, nil
}

// CreateTuple writes a descriptor at uri for a Tuple over children, in
// order. Every child must already have a URI.
func (s *Store) CreateTuple(children []Shard, uri string, overwrite bool) (*Tuple, error) {
	t, err := NewTuple(children...)
	if err != nil {
		return nil, err
	}
	if err := s.persistAt(t, uri, overwrite); err != nil {
		return nil, err
	}
	t.uri = uri

	s.logger.Debug("created tuple shard", zap.String("uri", uri), zap.Int("shards", t.Len()))
	return t, nil
}

// Persist rewrites the descriptor of a persisted Dict or Tuple from its
// current children. Descriptors are never edited in place: the whole file
// is replaced, so overwrite must be set.
func (s *Store) Persist(c Shard, overwrite bool) error {
	switch c.(type) {
	case *Dict, *Tuple:
	default:
		return fmt.Errorf("%w: cannot persist %T; create it instead", ErrUnsupported, c)
	}
	if c.URI() == "" {
		return fmt.Errorf("%w: %s has no URI; create it first", ErrMalformed, c.Kind())
	}
	return s.persistAt(c, c.URI(), overwrite)
}

// Extend appends children to a persisted Tuple and rewrites its
// descriptor. The in-memory tuple is left unchanged if the write fails.
func (s *Store) Extend(t *Tuple, children ...Shard) error {
	if t.uri == "" {
		return fmt.Errorf("%w: tuple has no URI; create it first", ErrMalformed)
	}
	grown, err := NewTuple(append(t.Shards(), children...)...)
	if err != nil {
		return err
	}
	if err := s.persistAt(grown, t.uri, true); err != nil {
		return err
	}
	t.shards = grown.shards

	s.logger.Debug("extended tuple shard", zap.String("uri", t.uri), zap.Int("shards", t.Len()))
	return nil
}

func (s *Store) persistAt(c Shard, uri string, overwrite bool) error {
	path, err := PathFromURI(uri)
	if err != nil {
		return err
	}
	d, err := describe(c)
	if err != nil {
		return fmt.Errorf("shard %s: %w", uri, err)
	}
	if err := s.writeDescriptor(path, d, overwrite); err != nil {
		return fmt.Errorf("shard %s: %w", uri, err)
	}
	return nil
}

// removeOrphan deletes a payload written by a create call that then
// failed, unless the payload existed before the call.
func (s *Store) removeOrphan(path string, existed bool) {
	if existed {
		s.logger.Warn("payload replaced but descriptor not written", zap.String("path", path))
		return
	}
	if err := s.fs.Remove(path); err != nil {
		s.logger.Warn("failed to remove orphaned payload", zap.String("path", path), zap.Error(err))
	}
}
