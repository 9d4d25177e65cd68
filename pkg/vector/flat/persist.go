package flat

import (
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/papyrusco/tome/pkg/vector"
)

// sideTables is the gob-serialized companion to the binary vector file.
// Row n of the vector file corresponds to Documents[n] and Metadatas[n].
type sideTables struct {
	Documents []string
	Metadatas []map[string]any
}

func init() {
	// Metadata values cross the gob boundary as interface values, so
	// their concrete types must be registered.
	gob.Register(map[string]any{})
	gob.Register([]any{})
}

// Save writes the vector rows to index.bin (little-endian float32 rows
// behind a dimension+count header) and the texts and metadata to
// records.gob. Both files are rewritten atomically enough for a
// single-writer index: records first, vectors last.
func (i *Index) Save() error {
	recordsPath := filepath.Join(i.persistDir, recordsFile)
	indexPath := filepath.Join(i.persistDir, indexFile)

	tables := sideTables{
		Documents: make([]string, len(i.records)),
		Metadatas: make([]map[string]any, len(i.records)),
	}
	for n, rec := range i.records {
		tables.Documents[n] = rec.text
		tables.Metadatas[n] = rec.metadata
	}

	recordsOut, err := os.Create(recordsPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", recordsPath, err)
	}
	if err := gob.NewEncoder(recordsOut).Encode(tables); err != nil {
		recordsOut.Close()
		return fmt.Errorf("encoding side tables: %w", err)
	}
	if err := recordsOut.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", recordsPath, err)
	}

	buf := make([]byte, 8+len(i.records)*i.dimension*4)
	binary.LittleEndian.PutUint32(buf[0:], uint32(i.dimension))
	binary.LittleEndian.PutUint32(buf[4:], uint32(len(i.records)))
	off := 8
	for _, rec := range i.records {
		for _, f := range rec.embedding {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
			off += 4
		}
	}
	if err := os.WriteFile(indexPath, buf, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", indexPath, err)
	}

	i.logger.Info("flat index saved",
		zap.String("persist_dir", i.persistDir),
		zap.Int("records", len(i.records)),
	)

	return nil
}

// Load restores the arena from the two persistence files. The files
// must agree row-for-row; any mismatch between vector rows and side
// tables is a corruption error with no partial recovery.
func (i *Index) Load() error {
	indexPath := filepath.Join(i.persistDir, indexFile)
	recordsPath := filepath.Join(i.persistDir, recordsFile)

	buf, err := os.ReadFile(indexPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", indexPath, err)
	}
	if len(buf) < 8 {
		return fmt.Errorf("%w: %s truncated", vector.ErrCorruptIndex, indexPath)
	}

	dimension := int(binary.LittleEndian.Uint32(buf[0:]))
	count := int(binary.LittleEndian.Uint32(buf[4:]))
	if dimension != i.dimension {
		return fmt.Errorf("%w: saved with dimension %d, index expects %d",
			vector.ErrDimensionMismatch, dimension, i.dimension)
	}
	if len(buf) != 8+count*dimension*4 {
		return fmt.Errorf("%w: %s holds %d bytes, expected %d for %d rows",
			vector.ErrCorruptIndex, indexPath, len(buf), 8+count*dimension*4, count)
	}

	recordsIn, err := os.Open(recordsPath)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", vector.ErrCorruptIndex, recordsPath, err)
	}
	defer recordsIn.Close()

	var tables sideTables
	if err := gob.NewDecoder(recordsIn).Decode(&tables); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", vector.ErrCorruptIndex, recordsPath, err)
	}
	if len(tables.Documents) != count || len(tables.Metadatas) != count {
		return fmt.Errorf("%w: vector file holds %d rows, side tables hold %d texts and %d metadatas",
			vector.ErrCorruptIndex, count, len(tables.Documents), len(tables.Metadatas))
	}

	records := make([]record, count)
	off := 8
	for n := 0; n < count; n++ {
		emb := make([]float32, dimension)
		for d := 0; d < dimension; d++ {
			emb[d] = math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
			off += 4
		}
		records[n] = record{
			embedding: emb,
			text:      tables.Documents[n],
			metadata:  tables.Metadatas[n],
		}
	}
	i.records = records

	return nil
}
