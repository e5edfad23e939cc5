package scan

import (
	"reflect"
	"testing"
	"testing/fstest"
)

func TestScan_MaxDepth(t *testing.T) {
	fsys := fstest.MapFS{
		"root/posts.html":            &fstest.MapFile{Data: []byte("a")},
		"root/stories.HTM":           &fstest.MapFile{Data: []byte("b")},
		"root/readme.txt":            &fstest.MapFile{Data: []byte("c")},
		"root/sub/archived.html":     &fstest.MapFile{Data: []byte("d")},
		"root/sub/nested/older.html": &fstest.MapFile{Data: []byte("e")},
	}

	testCases := []struct {
		name     string
		maxDepth int
		want     []string
	}{
		{
			name:     "depth 0 includes only top-level",
			maxDepth: 0,
			want:     []string{"posts.html", "stories.HTM"},
		},
		{
			name:     "depth 1 includes one subdirectory",
			maxDepth: 1,
			want:     []string{"posts.html", "stories.HTM", "sub/archived.html"},
		},
		{
			name:     "unlimited includes nested subdirectories",
			maxDepth: -1,
			want:     []string{"posts.html", "stories.HTM", "sub/archived.html", "sub/nested/older.html"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.MaxDepth = tc.maxDepth

			got, err := Scan(fsys, "root", opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("unexpected result\n got: %#v\nwant: %#v", got, tc.want)
			}
		})
	}
}

func TestScan_IgnoresOtherFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"root/a.txt":      &fstest.MapFile{Data: []byte("a")},
		"root/b.jpg":      &fstest.MapFile{Data: []byte("b")},
		"root/index.html": &fstest.MapFile{Data: []byte("c")},
	}

	got, err := Scan(fsys, "root", DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"index.html"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestScan_CustomExtensions(t *testing.T) {
	fsys := fstest.MapFS{
		"root/feed.xhtml": &fstest.MapFile{Data: []byte("a")},
		"root/feed.html":  &fstest.MapFile{Data: []byte("b")},
	}

	opts := DefaultOptions()
	opts.Extensions = []string{"xhtml"}

	got, err := Scan(fsys, "root", opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"feed.xhtml"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestScan_InvalidMaxDepth(t *testing.T) {
	if _, err := Scan(fstest.MapFS{}, ".", Options{MaxDepth: -2}); err == nil {
		t.Fatalf("expected error for invalid max depth")
	}
}

func TestScan_EmptyTree(t *testing.T) {
	fsys := fstest.MapFS{
		"root/sub/.keep": &fstest.MapFile{Data: []byte{}},
	}

	got, err := Scan(fsys, "root", DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no matches, got %#v", got)
	}
}
