package scanpath

import (
	"errors"
	"testing"
)

func TestMap(t *testing.T) {
	tests := []struct {
		name       string
		scanRoot   string
		storedBase string
		input      string
		want       string
		wantErr    bool
	}{
		{
			name:       "file under root",
			scanRoot:   "/mnt/usb/photos",
			storedBase: "/media/photos",
			input:      "/mnt/usb/photos/2019/img.jpg",
			want:       "/media/photos/2019/img.jpg",
		},
		{
			name:       "root itself maps to stored base",
			scanRoot:   "/mnt/usb/photos",
			storedBase: "/media/photos",
			input:      "/mnt/usb/photos",
			want:       "/media/photos",
		},
		{
			name:     "empty stored base records under scan root",
			scanRoot: "/data/media",
			input:    "/data/media/a/b.mp4",
			want:     "/data/media/a/b.mp4",
		},
		{
			name:       "unclean input path",
			scanRoot:   "/mnt/usb/photos",
			storedBase: "/media/photos",
			input:      "/mnt/usb/photos/./2019//img.jpg",
			want:       "/media/photos/2019/img.jpg",
		},
		{
			name:       "path outside root",
			scanRoot:   "/mnt/usb/photos",
			storedBase: "/media/photos",
			input:      "/mnt/usb/other/img.jpg",
			wantErr:    true,
		},
		{
			name:       "escape via dotdot",
			scanRoot:   "/mnt/usb/photos",
			storedBase: "/media/photos",
			input:      "/mnt/usb/photos/../secret.jpg",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMapper(tt.scanRoot, tt.storedBase)
			got, err := m.Map(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrOutsideRoot) {
					t.Fatalf("Map(%q) error = %v, want ErrOutsideRoot", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Map(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Map(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRel(t *testing.T) {
	m := NewMapper("/mnt/usb/photos", "/media/photos")

	rel, err := m.Rel("/mnt/usb/photos/2019/img.jpg")
	if err != nil {
		t.Fatalf("Rel: %v", err)
	}
	if rel != "2019/img.jpg" {
		t.Errorf("Rel = %q, want 2019/img.jpg", rel)
	}

	rel, err = m.Rel("/mnt/usb/photos")
	if err != nil {
		t.Fatalf("Rel(root): %v", err)
	}
	if rel != "" {
		t.Errorf("Rel(root) = %q, want empty", rel)
	}

	if _, err := m.Rel("/elsewhere"); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("Rel outside root error = %v, want ErrOutsideRoot", err)
	}
}

func TestStoredBaseNormalization(t *testing.T) {
	m := NewMapper("/scan", "/stored/base/")
	if m.StoredBase() != "/stored/base" {
		t.Errorf("StoredBase = %q, want /stored/base", m.StoredBase())
	}
}
