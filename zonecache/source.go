package zonecache

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"

	"github.com/ngrash/tzresolve/tzif"
)

// Source provides the TZif bytes of a zone. ReadZone returns an error
// matching fs.ErrNotExist if the source has no such zone.
type Source interface {
	ReadZone(id string) ([]byte, error)
}

// DirSource reads zone files from a zoneinfo directory such as
// /usr/share/zoneinfo.
type DirSource struct {
	Dir string
}

// ReadZone reads the file named id below the directory.
func (s DirSource) ReadZone(id string) ([]byte, error) {
	if !fs.ValidPath(id) {
		return nil, fmt.Errorf("zone %q: %w", id, fs.ErrNotExist)
	}
	return fs.ReadFile(os.DirFS(s.Dir), id)
}

// IDs returns the identifiers of all TZif files below the directory, in
// lexical order. The posix and right subtrees are skipped; they duplicate
// the main tree.
func (s DirSource) IDs() ([]string, error) {
	fsys := os.DirFS(s.Dir)
	var ids []string
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == "posix" || path == "right" {
				return fs.SkipDir
			}
			return nil
		}
		ok, err := isTZif(fsys, path)
		if err != nil {
			return err
		}
		if ok {
			ids = append(ids, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

// isTZif reports whether the file at path starts with the TZif magic.
func isTZif(fsys fs.FS, path string) (bool, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	magic := make([]byte, len(tzif.Magic))
	if _, err := io.ReadFull(f, magic); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(magic, tzif.Magic[:]), nil
}

// MapSource serves zones from memory.
type MapSource map[string][]byte

// ReadZone returns the bytes stored for id.
func (s MapSource) ReadZone(id string) ([]byte, error) {
	b, ok := s[id]
	if !ok {
		return nil, fmt.Errorf("zone %q: %w", id, fs.ErrNotExist)
	}
	return b, nil
}

// IDs returns the identifiers in the map in lexical order.
func (s MapSource) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Sources tries each source in turn and returns the first zone found.
type Sources []Source

// ReadZone returns the bytes from the first source that has id. Errors
// other than fs.ErrNotExist stop the search.
func (s Sources) ReadZone(id string) ([]byte, error) {
	for _, src := range s {
		b, err := src.ReadZone(id)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("zone %q: %w", id, fs.ErrNotExist)
}

// Dirs returns a source reading from the given zoneinfo directories in
// order.
func Dirs(dirs ...string) Sources {
	s := make(Sources, len(dirs))
	for i, d := range dirs {
		s[i] = DirSource{Dir: d}
	}
	return s
}
