package takeout

import (
	"errors"
	"path/filepath"
	"testing"
)

var testScan = ScanOptions{
	SupportedExtensions: []string{".jpg", ".png", ".mp4"},
	Match:               DefaultMatchOptions(),
}

func TestBuildFileSet(t *testing.T) {
	in := t.TempDir()
	writeFile(t, filepath.Join(in, "a.jpg"), "a")
	writeFile(t, filepath.Join(in, "a.jpg.json"), "{}")
	writeFile(t, filepath.Join(in, "b.PNG"), "b")
	writeFile(t, filepath.Join(in, "notes.txt"), "n")
	writeFile(t, filepath.Join(in, ".hidden.jpg"), "h")
	writeFile(t, filepath.Join(in, "sub", "c.mp4"), "c")

	set, err := BuildFileSet(in, "", testScan)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		filepath.Join(in, "a.jpg"),
		filepath.Join(in, "b.PNG"),
		filepath.Join(in, "sub", "c.mp4"),
	}
	if set.Len() != len(want) {
		t.Fatalf("got %d units, want %d", set.Len(), len(want))
	}
	for i, u := range set.Units {
		if u.Media.Path != want[i] {
			t.Fatalf("unit %d = %s, want %s", i, u.Media.Path, want[i])
		}
		if u.Output != nil {
			t.Fatalf("unit %d has an output without an output dir", i)
		}
	}

	if sc := set.Units[0].Sidecar; sc == nil || sc.Name != "a.jpg.json" {
		t.Fatalf("a.jpg sidecar = %+v", sc)
	}
	if set.Units[1].Sidecar != nil {
		t.Fatalf("b.PNG should have no sidecar")
	}
	if set.Units[1].Media.Extension != ".PNG" {
		t.Fatalf("extension = %q, want original case", set.Units[1].Media.Extension)
	}
	if set.WithSidecar() != 1 {
		t.Fatalf("WithSidecar = %d, want 1", set.WithSidecar())
	}

	counts := set.CountsByExtension()
	if counts[".jpg"] != 1 || counts[".png"] != 1 || counts[".mp4"] != 1 {
		t.Fatalf("counts = %v", counts)
	}
	if exts := set.Extensions(); len(exts) != 3 || exts[0] != ".jpg" || exts[2] != ".png" {
		t.Fatalf("extensions = %v", exts)
	}
}

func TestBuildFileSetEmptyInput(t *testing.T) {
	in := t.TempDir()
	writeFile(t, filepath.Join(in, "a.jpg.json"), "{}")
	writeFile(t, filepath.Join(in, "readme.html"), "")

	_, err := BuildFileSet(in, "", testScan)
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestBuildFileSetOutputNames(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFile(t, filepath.Join(in, "2019", "IMG_1.jpg"), "one")
	writeFile(t, filepath.Join(in, "2020", "IMG_1.jpg"), "two")
	writeFile(t, filepath.Join(in, "2021", "img_1.JPG"), "three")
	writeFile(t, filepath.Join(out, "IMG_1_1.jpg"), "already there")

	set, err := BuildFileSet(in, out, ScanOptions{SupportedExtensions: []string{".jpg"}})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"IMG_1.jpg", "IMG_1_2.jpg", "img_1_3.JPG"}
	for i, u := range set.Units {
		if u.Output == nil {
			t.Fatalf("unit %d has no output", i)
		}
		if u.Output.Name != want[i] {
			t.Fatalf("unit %d output = %s, want %s", i, u.Output.Name, want[i])
		}
		if u.Output.Path != filepath.Join(out, want[i]) {
			t.Fatalf("unit %d output path = %s", i, u.Output.Path)
		}
		if u.Destination() != *u.Output {
			t.Fatalf("unit %d destination should be the output", i)
		}
	}
}

func TestOutputNamerMissingDir(t *testing.T) {
	n, err := NewOutputNamer(filepath.Join(t.TempDir(), "not-yet"))
	if err != nil {
		t.Fatal(err)
	}
	if got := n.Next("/x/a.mov"); got != "a.mov" {
		t.Fatalf("Next = %s", got)
	}
	if got := n.Next("/y/A.MOV"); got != "A_1.MOV" {
		t.Fatalf("Next = %s", got)
	}
}
