// Package snapshot exports built legend indices as zstd-compressed JSON and restores
// them without replaying any game.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vytor/chesslegends/internal/book"
	"github.com/vytor/chesslegends/internal/identity"
	"github.com/vytor/chesslegends/internal/index"
	"github.com/vytor/chesslegends/internal/legend"
	"github.com/vytor/chesslegends/internal/models"
)

const formatVersion = 1

type file struct {
	Version int                              `json:"version"`
	Legend  identity.Legend                  `json:"legend"`
	Records []models.GameRecord              `json:"records"`
	Sides   map[string]models.Side           `json:"sides"`
	Horizon int                              `json:"horizon"`
	Book    []models.OpeningBookEntry        `json:"book"`
	Index   map[string][]models.Continuation `json:"index"`
	Stats   legend.Stats                     `json:"stats"`
	BuiltAt time.Time                        `json:"built_at"`
}

// Write encodes snap to w.
func Write(w io.Writer, snap *legend.Snapshot) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}

	f := file{
		Version: formatVersion,
		Legend:  snap.Legend,
		Records: snap.Records,
		Sides:   snap.Sides,
		Horizon: snap.Book.Horizon(),
		Book:    snap.Book.Entries(),
		Index:   snap.Index.Entries(),
		Stats:   snap.Stats,
		BuiltAt: snap.BuiltAt,
	}
	if err := json.NewEncoder(enc).Encode(f); err != nil {
		enc.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return enc.Close()
}

// Read decodes a snapshot written by Write.
func Read(r io.Reader) (*legend.Snapshot, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer dec.Close()

	var f file
	if err := json.NewDecoder(dec).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if f.Version != formatVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", f.Version)
	}
	if f.Sides == nil {
		f.Sides = map[string]models.Side{}
	}
	if f.Stats.Openings == nil {
		f.Stats.Openings = map[string]int{}
	}
	return &legend.Snapshot{
		Legend:  f.Legend,
		Records: f.Records,
		Sides:   f.Sides,
		Book:    book.FromEntries(f.Horizon, f.Book),
		Index:   index.FromEntries(f.Index),
		Stats:   f.Stats,
		BuiltAt: f.BuiltAt,
	}, nil
}

// WriteFile writes snap to path through a temporary file renamed over path, so a
// failed write leaves the previous snapshot intact.
func WriteFile(path string, snap *legend.Snapshot) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := Write(f, snap); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// ReadFile reads a snapshot from path.
func ReadFile(path string) (*legend.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}
