package xlsx

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"
)

// Write validates wb and writes the complete package to w. Nothing is
// written when validation fails.
func Write(w io.Writer, wb Workbook, opts Options) error {
	p, err := build(wb, opts)
	if err != nil {
		return err
	}
	mod := time.Now()
	if opts.Now != nil {
		mod = opts.Now()
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, pt := range p.parts {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     pt.name,
			Method:   zip.Deflate,
			Modified: mod,
		})
		if err != nil {
			return err
		}
		if _, err := fw.Write(pt.body); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// WriteFile writes the workbook next to path and renames it into place, so
// readers never see a partial package.
func WriteFile(path string, wb Workbook, opts Options) error {
	if err := wb.Validate(); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := Write(f, wb, opts); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
