package upload

import (
	"bytes"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG.
const pixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func pngBytes(t *testing.T) []byte {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(pixelPNG)
	require.NoError(t, err)
	return data
}

func TestSaveImage(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	st, err := NewStore(dir, "uploads", 1<<20)
	req.NoError(err)

	stored, err := st.SaveImage(bytes.NewReader(pngBytes(t)))
	req.NoError(err)
	req.Equal("image/png", stored.MimeType)
	req.True(strings.HasSuffix(stored.Filename, ".png"))
	req.Equal("/uploads/"+stored.Filename, stored.URL)

	onDisk, err := os.ReadFile(filepath.Join(dir, stored.Filename))
	req.NoError(err)
	req.Equal(pngBytes(t), onDisk)

	entries, err := os.ReadDir(dir)
	req.NoError(err)
	req.Len(entries, 1, "temp files must be cleaned up")
}

func TestSaveImageRejectsNonImage(t *testing.T) {
	st, err := NewStore(t.TempDir(), "/uploads", 1<<20)
	require.NoError(t, err)

	_, err = st.SaveImage(strings.NewReader("#!/bin/sh\necho pwned\n"))
	require.True(t, errors.Is(err, ErrUnsupportedType), "got %v", err)
}

func TestSaveImageRejectsSVG(t *testing.T) {
	dir := t.TempDir()
	st, err := NewStore(dir, "/uploads", 1<<20)
	require.NoError(t, err)

	svg := `<svg xmlns="http://www.w3.org/2000/svg" width="1" height="1"><script>alert(document.cookie)</script></svg>`
	stored, err := st.SaveImage(strings.NewReader(svg))
	require.ErrorIs(t, err, ErrUnsupportedType)
	require.Nil(t, stored)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestSaveImageAcceptsGIF(t *testing.T) {
	st, err := NewStore(t.TempDir(), "/uploads", 1<<20)
	require.NoError(t, err)

		gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
	stored, err := st.SaveImage(bytes.NewReader(gif))
	require.NoError(t, err)
	require.Equal(t, "image/gif", stored.MimeType)
	require.True(t, strings.HasSuffix(stored.Filename, ".gif"))
}

func TestSaveImageRejectsOversized(t *testing.T) {
	dir := t.TempDir()
	st, err := NewStore(dir, "/uploads", 64)
	require.NoError(t, err)

	big := append(pngBytes(t), bytes.Repeat([]byte{0}, 256)...)
	_, err = st.SaveImage(bytes.NewReader(big))
	require.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestSaveImageRejectsEmpty(t *testing.T) {
	st, err := NewStore(t.TempDir(), "/uploads", 0)
	require.NoError(t, err)

	_, err = st.SaveImage(bytes.NewReader(nil))
	require.ErrorIs(t, err, ErrEmpty)
}
