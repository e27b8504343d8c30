// Package spill implements the History Engine's overflow-to-disk path
//: large undo/redo payloads (frame snapshots) are written to a
// scratch directory as `.ersnap`
// files instead of held in memory indefinitely, and cleaned up on
// command-stack eviction. The encoding is a minimal length-prefixed
// binary format, not a general-purpose serialization library, since
// the payloads are internal-only and never cross a process boundary.
package spill

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/eruostudio/sheetcore/internal/frame"
	"github.com/eruostudio/sheetcore/pkg/coreerr"
)

const fileExt = ".ersnap"

// PathProvider supplies the scratch directory spill files are written
// into. internal/spillpath implements this with a canonicalizing
// resolver.
type PathProvider interface {
	ScratchDir() string
}

// Store writes and reads spilled Frame snapshots under a scratch
// directory, naming each file by a caller-supplied id (internal/document
// uses a monotonically increasing command sequence number).
type Store struct {
	paths PathProvider
}

// New constructs a Store backed by paths.
func New(paths PathProvider) *Store {
	return &Store{paths: paths}
}

func (s *Store) filePath(id string) string {
	return filepath.Join(s.paths.ScratchDir(), id+fileExt)
}

// Write spills f to disk under id, overwriting any existing file.
func (s *Store) Write(id string, f *frame.Frame) error {
	path := s.filePath(id)
	file, err := os.Create(path)
	if err != nil {
		return coreerr.New(coreerr.IOSpill, "create %s: %v", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if err := encodeFrame(w, f); err != nil {
		return coreerr.New(coreerr.IOSpill, "encode %s: %v", path, err)
	}
	if err := w.Flush(); err != nil {
		return coreerr.New(coreerr.IOSpill, "flush %s: %v", path, err)
	}
	return nil
}

// Read loads a previously spilled Frame back into memory.
func (s *Store) Read(id string) (*frame.Frame, error) {
	path := s.filePath(id)
	file, err := os.Open(path)
	if err != nil {
		return nil, coreerr.New(coreerr.IOSpill, "open %s: %v", path, err)
	}
	defer file.Close()

	r := bufio.NewReader(file)
	f, err := decodeFrame(r)
	if err != nil {
		return nil, coreerr.New(coreerr.IOSpill, "decode %s: %v", path, err)
	}
	return f, nil
}

// Remove deletes the spill file for id, if present. Missing files are
// not an error: a command may be cleaned up twice during redo
// invalidation.
func (s *Store) Remove(id string) error {
	path := s.filePath(id)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return coreerr.New(coreerr.IOSpill, "remove %s: %v", path, err)
	}
	return nil
}

func writeUvarint(w io.ByteWriter, v uint64) error {
	buf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(buf, v)
	for _, b := range buf[:n] {
		if err := w.WriteByte(b); err != nil {
			return err
		}
	}
	return nil
}

func writeString(w *bufio.Writer, s string) error {
	if err := writeUvarint(w, uint64(len(s))); err != nil {
		return err
	}
	_, err := w.WriteString(s)
	return err
}

func readString(r *bufio.Reader) (string, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func encodeFrame(w *bufio.Writer, f *frame.Frame) error {
	schema := f.Schema()
	if err := writeUvarint(w, uint64(len(schema))); err != nil {
		return err
	}
	for _, col := range schema {
		if err := writeString(w, col.Name); err != nil {
			return err
		}
		if err := writeUvarint(w, uint64(col.Type)); err != nil {
			return err
		}
		if err := writeUvarint(w, uint64(uint32(col.Precision))); err != nil {
			return err
		}
		if err := writeUvarint(w, uint64(uint32(col.Scale))); err != nil {
			return err
		}
	}
	height := f.Height()
	if err := writeUvarint(w, uint64(height)); err != nil {
		return err
	}
	for c := 0; c < len(schema); c++ {
		for row := 0; row < height; row++ {
			v, _ := f.Get(c, row)
			if err := encodeCell(w, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func decodeFrame(r *bufio.Reader) (*frame.Frame, error) {
	width, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	schema := make([]frame.ColumnSchema, width)
	for i := range schema {
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		kind, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, err
		}
		precision, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, err
		}
		scale, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, err
		}
		schema[i] = frame.ColumnSchema{
			Name:      name,
			Type:      frame.DType(kind),
			Precision: int32(precision),
			Scale:     int32(scale),
		}
	}
	height, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	f := frame.NewBlank(schema, int(height))
	for c := 0; c < int(width); c++ {
		for row := 0; row < int(height); row++ {
			v, err := decodeCell(r)
			if err != nil {
				return nil, err
			}
			f.Set(c, row, v)
		}
	}
	return f, nil
}

// Cell payload tags select how a cell's value bytes are encoded. They
// are not written to disk: each cell (and column) records its
// frame.DType number, so the on-disk format depends on DType's ordering.
const (
	tagNull byte = iota
	tagBool
	tagInt
	tagUint
	tagFloat
	tagDecimal
	tagStr
	tagTime
)

func encodeCell(w *bufio.Writer, v frame.CellValue) error {
	if err := writeUvarint(w, uint64(v.Kind)); err != nil {
		return err
	}
	if v.IsNull {
		return w.WriteByte(1)
	}
	if err := w.WriteByte(0); err != nil {
		return err
	}
	switch tagForKind(v.Kind) {
	case tagBool:
		b := byte(0)
		if v.Bool {
			b = 1
		}
		return w.WriteByte(b)
	case tagUint:
		return writeUvarint(w, v.Uint)
	case tagInt:
		return writeUvarint(w, uint64(v.Int))
	case tagFloat:
		return binary.Write(w, binary.LittleEndian, v.Float)
	case tagDecimal:
		if err := writeUvarint(w, uint64(v.DecUnscaled)); err != nil {
			return err
		}
		return writeUvarint(w, uint64(uint32(v.DecScale)))
	case tagStr:
		return writeString(w, v.Str)
	case tagTime:
		data, err := v.T.MarshalBinary()
		if err != nil {
			return err
		}
		if err := writeUvarint(w, uint64(len(data))); err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("spill: unencodable kind %v", v.Kind)
}

func decodeCell(r *bufio.Reader) (frame.CellValue, error) {
	kindU, err := binary.ReadUvarint(r)
	if err != nil {
		return frame.CellValue{}, err
	}
	kind := frame.DType(kindU)
	isNull, err := r.ReadByte()
	if err != nil {
		return frame.CellValue{}, err
	}
	if isNull == 1 {
		return frame.Null(kind), nil
	}
	switch tagForKind(kind) {
	case tagBool:
		b, err := r.ReadByte()
		if err != nil {
			return frame.CellValue{}, err
		}
		return frame.BoolValue(b == 1), nil
	case tagUint:
		u, err := binary.ReadUvarint(r)
		if err != nil {
			return frame.CellValue{}, err
		}
		return frame.UintValue(kind, u), nil
	case tagInt:
		u, err := binary.ReadUvarint(r)
		if err != nil {
			return frame.CellValue{}, err
		}
		return frame.IntValue(kind, int64(u)), nil
	case tagFloat:
		var f float64
		if err := binary.Read(r, binary.LittleEndian, &f); err != nil {
			return frame.CellValue{}, err
		}
		return frame.FloatValue(kind, f), nil
	case tagDecimal:
		unscaled, err := binary.ReadUvarint(r)
		if err != nil {
			return frame.CellValue{}, err
		}
		scale, err := binary.ReadUvarint(r)
		if err != nil {
			return frame.CellValue{}, err
		}
		return frame.DecimalValue(int64(unscaled), int32(scale)), nil
	case tagStr:
		s, err := readString(r)
		if err != nil {
			return frame.CellValue{}, err
		}
		if kind == frame.DTypeCategorical {
			return frame.CategoricalValue(s), nil
		}
		return frame.Utf8Value(s), nil
	case tagTime:
		n, err := binary.ReadUvarint(r)
		if err != nil {
			return frame.CellValue{}, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return frame.CellValue{}, err
		}
		var t time.Time
		if err := t.UnmarshalBinary(buf); err != nil {
			return frame.CellValue{}, err
		}
		return frame.TimeValue(kind, t), nil
	}
	return frame.CellValue{}, fmt.Errorf("spill: unknown kind %v", kind)
}

func tagForKind(kind frame.DType) byte {
	switch kind {
	case frame.DTypeBool:
		return tagBool
	case frame.DTypeI8, frame.DTypeI16, frame.DTypeI32, frame.DTypeI64:
		return tagInt
	case frame.DTypeU8, frame.DTypeU16, frame.DTypeU32, frame.DTypeU64:
		return tagUint
	case frame.DTypeF32, frame.DTypeF64:
		return tagFloat
	case frame.DTypeDecimal:
		return tagDecimal
	case frame.DTypeUtf8, frame.DTypeCategorical:
		return tagStr
	case frame.DTypeDate, frame.DTypeTime, frame.DTypeDatetime:
		return tagTime
	default:
		return tagNull
	}
}
