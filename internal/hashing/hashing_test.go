package hashing

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input  string
		want   Mode
		wantOK bool
	}{
		{"none", ModeNone, true},
		{"", ModeNone, true},
		{"quick", ModeQuick, true},
		{"sha256", ModeSHA256, true},
		{"SHA256", ModeSHA256, true},
		{"md5", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseMode(tt.input)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("ParseMode(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFileModeNone(t *testing.T) {
	digest, err := File("does-not-even-exist", ModeNone)
	if err != nil {
		t.Fatalf("ModeNone should not touch the file: %v", err)
	}
	if digest != "" {
		t.Errorf("ModeNone digest = %q, want empty", digest)
	}
}

func TestFileSHA256(t *testing.T) {
	dir := t.TempDir()
	data := []byte("the quick brown fox")
	path := writeFile(t, dir, "f.bin", data)

	digest, err := File(path, ModeSHA256)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	want := fmt.Sprintf("%x", sha256.Sum256(data))
	if digest != want {
		t.Errorf("sha256 digest = %s, want %s", digest, want)
	}
}

func TestFileQuickDeterministic(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "f.bin", bytes.Repeat([]byte{0xAB}, 4096))

	first, err := File(path, ModeQuick)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if len(first) != 16 {
		t.Errorf("quick digest length = %d, want 16 hex chars", len(first))
	}
	second, err := File(path, ModeQuick)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if first != second {
		t.Errorf("quick digest not deterministic: %s vs %s", first, second)
	}
}

func TestFileQuickDetectsChanges(t *testing.T) {
	dir := t.TempDir()

	a := writeFile(t, dir, "a.bin", []byte("content one"))
	b := writeFile(t, dir, "b.bin", []byte("content two"))

	da, err := File(a, ModeQuick)
	if err != nil {
		t.Fatal(err)
	}
	db, err := File(b, ModeQuick)
	if err != nil {
		t.Fatal(err)
	}
	if da == db {
		t.Error("different contents produced the same quick digest")
	}
}

// A size change beyond the sampled windows must still change the digest,
// because the size is folded into the hash.
func TestFileQuickSizeSensitivity(t *testing.T) {
	dir := t.TempDir()

	big := bytes.Repeat([]byte{0x42}, 3*(1<<20))
	a := writeFile(t, dir, "a.bin", big)
	// Same head and tail windows, different middle length.
	bigger := append(bytes.Repeat([]byte{0x42}, 3*(1<<20)), bytes.Repeat([]byte{0x42}, 512)...)
	b := writeFile(t, dir, "b.bin", bigger)

	da, err := File(a, ModeQuick)
	if err != nil {
		t.Fatal(err)
	}
	db, err := File(b, ModeQuick)
	if err != nil {
		t.Fatal(err)
	}
	if da == db {
		t.Error("size change did not change the quick digest")
	}
}

func TestFileQuickTailWindow(t *testing.T) {
	dir := t.TempDir()

	// Files larger than twice the window with identical heads but different
	// tails must differ.
	size := 3 * (1 << 20)
	dataA := bytes.Repeat([]byte{0x00}, size)
	dataB := bytes.Repeat([]byte{0x00}, size)
	dataB[size-1] = 0xFF

	a := writeFile(t, dir, "a.bin", dataA)
	b := writeFile(t, dir, "b.bin", dataB)

	da, err := File(a, ModeQuick)
	if err != nil {
		t.Fatal(err)
	}
	db, err := File(b, ModeQuick)
	if err != nil {
		t.Fatal(err)
	}
	if da == db {
		t.Error("tail mutation did not change the quick digest")
	}
}

func TestFileUnreadable(t *testing.T) {
	if _, err := File(filepath.Join(t.TempDir(), "missing.bin"), ModeSHA256); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := File(filepath.Join(t.TempDir(), "missing.bin"), ModeQuick); err == nil {
		t.Error("expected error for missing file")
	}
}
