package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"cityanalysis/internal/city"
)

// ErrNoInput means there is nothing to analyze: the input directory is
// missing or holds no city snapshot.
var ErrNoInput = errors.New("no city snapshot found")

const (
	cityPrefix   = "city_"
	suffixJSON   = ".json"
	suffixZstd   = ".json.zst"
	maxInputSize = 1 << 30
)

// IsCityFile reports whether name looks like a city snapshot.
func IsCityFile(name string) bool {
	if !strings.HasPrefix(name, cityPrefix) {
		return false
	}
	return strings.HasSuffix(name, suffixJSON) || strings.HasSuffix(name, suffixZstd)
}

// LatestCityFile returns the most recently modified snapshot in dir. Equal
// modification times fall back to the lexically greatest name.
func LatestCityFile(dir string) (string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: input directory not found: %s", ErrNoInput, dir)
		}
		return "", err
	}
	var (
		best     string
		bestInfo os.FileInfo
	)
	for _, e := range ents {
		if e.IsDir() || !IsCityFile(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if bestInfo == nil ||
			info.ModTime().After(bestInfo.ModTime()) ||
			(info.ModTime().Equal(bestInfo.ModTime()) && e.Name() > best) {
			best, bestInfo = e.Name(), info
		}
	}
	if bestInfo == nil {
		return "", fmt.Errorf("%w: no %s*.json files in %s", ErrNoInput, cityPrefix, dir)
	}
	return filepath.Join(dir, best), nil
}

// ReadCity loads a snapshot, decompressing .zst files, and checks its top
// level shape before handing it to the analysis.
func ReadCity(path string) (city.Document, error) {
	raw, err := readRaw(path)
	if err != nil {
		return city.Document{}, err
	}
	if err := Validate(raw); err != nil {
		return city.Document{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	doc, err := city.Parse(raw)
	if err != nil {
		return city.Document{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

func readRaw(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		r = dec
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, maxInputSize+1))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if n > maxInputSize {
		return nil, fmt.Errorf("%s: larger than %d bytes", filepath.Base(path), maxInputSize)
	}
	return buf.Bytes(), nil
}

// WriteCity stores raw as a snapshot, zstd-compressed when path ends in
// .zst.
func WriteCity(path string, raw []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if !strings.HasSuffix(path, ".zst") {
		_, err = f.Write(raw)
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	if _, err := enc.Write(raw); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}
