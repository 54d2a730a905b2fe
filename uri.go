package shard

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
)

// URIFromPath returns the file URI for an absolute or relative path.
// Relative paths are made absolute against the working directory.
func URIFromPath(p string) (string, error) {
	abs := p
	if !filepath.IsAbs(p) {
		var err error
		abs, err = filepath.Abs(p)
		if err != nil {
			return "", fmt.Errorf("failed to resolve %s: %w", p, err)
		}
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

// PathFromURI returns the filesystem path a file URI points at.
func PathFromURI(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("%w: uri %q: %v", ErrMalformed, uri, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("%w: uri %q: only file URIs are supported", ErrUnsupported, uri)
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", fmt.Errorf("%w: uri %q: remote host %q", ErrUnsupported, uri, u.Host)
	}
	if u.Path == "" || !path.IsAbs(u.Path) {
		return "", fmt.Errorf("%w: uri %q: path must be absolute", ErrMalformed, uri)
	}
	return filepath.FromSlash(path.Clean(u.Path)), nil
}

