package zonecache

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/ngrash/tzresolve/tzif"
)

// maxZoneFileSize bounds the size of an archive entry read into memory.
// Compiled zone files are a few kilobytes at most.
const maxZoneFileSize = 1 << 20

// ReadArchive unpacks compiled zone files from a gzip-compressed tar
// archive of a zoneinfo tree. Entries that do not start with the TZif magic
// are skipped, as are the posix and right subtrees. A leading zoneinfo/
// directory is stripped from entry names.
func ReadArchive(r io.Reader) (MapSource, error) {
	gunzip, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("read gzip: %w", err)
	}
	tr := tar.NewReader(gunzip)

	var (
		result   = make(MapSource)
		magicBuf = make([]byte, len(tzif.Magic))
	)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		id := archiveID(header.Name)
		if id == "" {
			continue
		}
		if header.Size < int64(len(tzif.Magic)) {
			// Too small to contain the magic string.
			continue
		}

		// Read only the magic string to check if it's a zone file.
		_, err = io.ReadFull(tr, magicBuf)
		if err != nil {
			return nil, fmt.Errorf("read magic string %q: %w", header.Name, err)
		}
		if !bytes.Equal(magicBuf, tzif.Magic[:]) {
			continue
		}

		if header.Size > maxZoneFileSize {
			return nil, fmt.Errorf("zone file %q is %d bytes, larger than %d", header.Name, header.Size, maxZoneFileSize)
		}
		data := make([]byte, header.Size)
		copy(data, magicBuf)
		_, err = io.ReadFull(tr, data[len(magicBuf):])
		if err != nil {
			return nil, fmt.Errorf("read rest of file %q: %w", header.Name, err)
		}
		result[id] = data
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("no zone files found")
	}
	return result, nil
}

// archiveID maps an archive entry name to a zone identifier, or "" for
// entries outside the main tree.
func archiveID(name string) string {
	name = path.Clean(strings.TrimPrefix(name, "./"))
	name = strings.TrimPrefix(name, "zoneinfo/")
	if strings.HasPrefix(name, "posix/") || strings.HasPrefix(name, "right/") ||
		strings.HasPrefix(name, "../") || strings.HasPrefix(name, "/") || name == "." {
		return ""
	}
	return name
}
