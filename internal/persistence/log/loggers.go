package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"cityanalysis/internal/aggregate"
	"cityanalysis/internal/reward"
)

// JSONLZstdWriter appends one JSON document per line to a zstd stream. The
// file is created on the first Write.
type JSONLZstdWriter struct {
	path string

	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
	n   int
}

func NewJSONLZstdWriter(path string) *JSONLZstdWriter {
	return &JSONLZstdWriter{path: path}
}

func (w *JSONLZstdWriter) Path() string { return w.path }

// Lines reports how many entries were written.
func (w *JSONLZstdWriter) Lines() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.n
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.w == nil {
		if err := w.openLocked(); err != nil {
			return err
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	w.n++
	return nil
}

func (w *JSONLZstdWriter) openLocked() error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 128*1024)
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err1 error
	if w.w != nil {
		err1 = w.w.Flush()
	}
	if w.enc != nil {
		if err := w.enc.Close(); err1 == nil {
			err1 = err
		}
		w.enc = nil
	}
	if w.f != nil {
		if err := w.f.Close(); err1 == nil {
			err1 = err
		}
		w.f = nil
	}
	w.w = nil
	return err1
}

// AuditEntry is one classified reward together with the building it came
// from.
type AuditEntry struct {
	Time               string  `json:"time"`
	Era                string  `json:"era"`
	BuildingID         string  `json:"building_id"`
	BuildingName       string  `json:"building_name"`
	Kit                string  `json:"kit"`
	Unit               string  `json:"unit"`
	Amount             float64 `json:"amount"`
	RewardID           string  `json:"reward_id,omitempty"`
	Source             string  `json:"source"`
	Option             string  `json:"option,omitempty"`
	OptionTime         *int    `json:"option_time,omitempty"`
	Chance             float64 `json:"chance"`
	RequiresMotivation bool    `json:"requires_motivation,omitempty"`
}

// AuditLogger writes every classified reward of a run (compressed).
type AuditLogger struct {
	w   *JSONLZstdWriter
	era string
	now func() time.Time
}

func NewAuditLogger(dir, era string) *AuditLogger {
	name := "audit_" + era + ".jsonl.zst"
	return &AuditLogger{w: NewJSONLZstdWriter(filepath.Join(dir, name)), era: era, now: time.Now}
}

func (l *AuditLogger) WriteAudit(b aggregate.Building, c reward.Classified) error {
	e := AuditEntry{
		Time:               l.now().UTC().Format(time.RFC3339),
		Era:                l.era,
		BuildingID:         b.ID,
		BuildingName:       b.Name,
		Kit:                c.Kit.SubType,
		Unit:               c.Unit,
		Amount:             c.Amount,
		RewardID:           c.RewardID,
		Source:             c.Source.String(),
		Option:             c.OptionName,
		Chance:             c.Chance.Effective(),
		RequiresMotivation: c.RequiresMotivation,
	}
	if c.HasOptionTime {
		t := c.OptionTime
		e.OptionTime = &t
	}
	return l.w.Write(e)
}

func (l *AuditLogger) Path() string { return l.w.Path() }
func (l *AuditLogger) Entries() int { return l.w.Lines() }
func (l *AuditLogger) Close() error { return l.w.Close() }
