package convert

import (
	"archive/zip"
	"bytes"
	"errors"
	"path/filepath"
	"strings"
)

// ErrEmptyArchive is returned instead of silently producing an archive
// with no entries.
var ErrEmptyArchive = errors.New("no converted artifacts to package")

// Package bundles the artifacts into a zip. Each entry is the input's
// display name with its extension replaced by .pdf, flat, no
// directories.
func Package(artifacts []Artifact) ([]byte, error) {
	if len(artifacts) == 0 {
		return nil, ErrEmptyArchive
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, a := range artifacts {
		w, err := zw.Create(pdfName(a.Name))
		if err != nil {
			zw.Close()
			return nil, err
		}
		if _, err := w.Write(a.PDF); err != nil {
			zw.Close()
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func pdfName(name string) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + ".pdf"
}
