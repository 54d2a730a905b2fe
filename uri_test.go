package shard

import (
	"path/filepath"
	"testing"
)

func TestPathFromURI(t *testing.T) {
	tests := []struct {
		uri     string
		want    string
		wantErr error
	}{
		{uri: "file:///data/a.json", want: filepath.FromSlash("/data/a.json")},
		{uri: "file://localhost/data/a.json", want: filepath.FromSlash("/data/a.json")},
		{uri: "file:///data/../b/./a.json", want: filepath.FromSlash("/b/a.json")},
		{uri: "file:///data/with%20space.json", want: filepath.FromSlash("/data/with space.json")},
		{uri: "s3://bucket/a.json", wantErr: ErrUnsupported},
		{uri: "file://remote/a.json", wantErr: ErrUnsupported},
		{uri: "a.json", wantErr: ErrUnsupported},
		{uri: "file:a.json", wantErr: ErrMalformed},
		{uri: "file://%zz", wantErr: ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, err := PathFromURI(tt.uri)
			if tt.wantErr != nil {
				assertErrorIs(t, err, tt.wantErr, "PathFromURI")
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("PathFromURI(%q) = %q, want %q", tt.uri, got, tt.want)
			}
		})
	}
}

func TestURIFromPath(t *testing.T) {
	uri, err := URIFromPath("/data/with space.json")
	if err != nil {
		t.Fatal(err)
	}
	if uri != "file:///data/with%20space.json" {
		t.Fatalf("unexpected uri %q", uri)
	}

	back, err := PathFromURI(uri)
	if err != nil || back != filepath.FromSlash("/data/with space.json") {
		t.Fatalf("round trip gave %q %v", back, err)
	}

	rel, err := URIFromPath("rel/a.json")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := PathFromURI(rel); err != nil {
		t.Fatalf("relative paths should become absolute URIs: %v", err)
	}
}
