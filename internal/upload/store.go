// Package upload stores profile pictures on local disk.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrTooLarge        = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrEmpty           = errors.New("empty file")
)

const sniffLen = 3072

// rasterTypes are the only formats accepted. Uploads are served from the
// chat origin, so scriptable images such as SVG are refused.
var rasterTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// Stored describes a saved file.
type Stored struct {
	Filename string
	URL      string
	MimeType string
	Size     int64
}

// Store writes uploads into a directory and names them by random id.
type Store struct {
	dir       string
	urlPrefix string
	maxBytes  int64
}

// NewStore creates dir if needed.
func NewStore(dir, urlPrefix string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{
		dir:       dir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
		maxBytes:  maxBytes,
	}, nil
}

// Dir returns the directory files are written to.
func (s *Store) Dir() string {
	return s.dir
}

// MaxBytes returns the per-file size cap, 0 when unlimited.
func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// URLPrefix returns the public path files are served under.
func (s *Store) URLPrefix() string {
	return s.urlPrefix
}

// SaveImage sniffs r, rejects anything that is not a raster image and writes it to disk.
func (s *Store) SaveImage(r io.Reader) (*Stored, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return nil, ErrEmpty
	}

	mt := mimetype.Detect(head)
	if !mimetype.EqualsAny(mt.String(), rasterTypes...) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
	}

	filename := uuid.NewString() + mt.Extension()
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	body := io.MultiReader(bytes.NewReader(head), r)
	if s.maxBytes > 0 {
		body = io.LimitReader(body, s.maxBytes+1)
	}
	size, err := io.Copy(tmp, body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return nil, ErrTooLarge
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, filename)); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	return &Stored{
		Filename: filename,
		URL:      path.Join(s.urlPrefix, filename),
		MimeType: mt.String(),
		Size:     size,
	}, nil
}
