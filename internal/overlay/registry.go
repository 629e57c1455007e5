package overlay

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Builtin font names
const (
	FontGoRegular = "goregular"
	FontGoBold    = "gobold"
	FontGoMono    = "gomono"
)

// Registry manages available fonts
type Registry struct {
	builtin map[string][]byte
	files   map[string]string
}

// NewRegistry creates a registry holding the Go font family
func NewRegistry() *Registry {
	return &Registry{
		builtin: map[string][]byte{
			FontGoRegular: goregular.TTF,
			FontGoBold:    gobold.TTF,
			FontGoMono:    gomono.TTF,
		},
		files: make(map[string]string),
	}
}

// Register adds a TTF/OTF file under name
func (r *Registry) Register(name, path string) {
	r.files[name] = path
}

// List returns all registered font names
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.builtin)+len(r.files))
	for name := range r.builtin {
		names = append(names, name)
	}
	for name := range r.files {
		if _, dup := r.builtin[name]; !dup {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Face loads name at the given pixel size. A name that is not registered but
// looks like a font file path is loaded directly.
func (r *Registry) Face(name string, sizePx float64) (font.Face, error) {
	data, err := r.load(name)
	if err != nil {
		return nil, err
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %q: %w", name, err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face %q: %w", name, err)
	}
	return face, nil
}

func (r *Registry) load(name string) ([]byte, error) {
	if path, ok := r.files[name]; ok {
		return readFont(path)
	}
	if data, ok := r.builtin[name]; ok {
		return data, nil
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ttf", ".otf":
		return readFont(name)
	}
	return nil, fmt.Errorf("unknown font %q", name)
}

func readFont(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	return data, nil
}
