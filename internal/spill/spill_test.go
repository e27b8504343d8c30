package spill

import (
	"testing"
	"time"

	"github.com/eruostudio/sheetcore/internal/frame"
)

type dirProvider string

func (d dirProvider) ScratchDir() string { return string(d) }

func buildVariedFrame() *frame.Frame {
	when := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)
	return frame.New([]*frame.Column{
		{Name: "flag", Type: frame.DTypeBool, Values: []frame.CellValue{frame.BoolValue(true), frame.Null(frame.DTypeBool)}},
		{Name: "count", Type: frame.DTypeI64, Values: []frame.CellValue{frame.IntValue(frame.DTypeI64, -7), frame.Null(frame.DTypeI64)}},
		{Name: "id", Type: frame.DTypeU32, Values: []frame.CellValue{frame.UintValue(frame.DTypeU32, 42), frame.Null(frame.DTypeU32)}},
		{Name: "ratio", Type: frame.DTypeF64, Values: []frame.CellValue{frame.FloatValue(frame.DTypeF64, 3.5), frame.Null(frame.DTypeF64)}},
		{Name: "price", Type: frame.DTypeDecimal, Values: []frame.CellValue{frame.DecimalValue(12345, 2), frame.Null(frame.DTypeDecimal)}},
		{Name: "name", Type: frame.DTypeUtf8, Values: []frame.CellValue{frame.Utf8Value("hello"), frame.Null(frame.DTypeUtf8)}},
		{Name: "tag", Type: frame.DTypeCategorical, Values: []frame.CellValue{frame.CategoricalValue("A"), frame.Null(frame.DTypeCategorical)}},
		{Name: "when", Type: frame.DTypeDatetime, Values: []frame.CellValue{frame.TimeValue(frame.DTypeDatetime, when), frame.Null(frame.DTypeDatetime)}},
	})
}

func TestStore_WriteReadRoundTrip_PreservesEveryDType(t *testing.T) {
	s := New(dirProvider(t.TempDir()))
	orig := buildVariedFrame()

	if err := s.Write("snap-1", orig); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := s.Read("snap-1")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if got.Width() != orig.Width() || got.Height() != orig.Height() {
		t.Fatalf("shape mismatch: got %dx%d, want %dx%d", got.Width(), got.Height(), orig.Width(), orig.Height())
	}
	for col := 0; col < orig.Width(); col++ {
		for row := 0; row < orig.Height(); row++ {
			wantV, _ := orig.Get(col, row)
			gotV, _ := got.Get(col, row)
			if !gotV.Equal(wantV) {
				t.Errorf("cell (%d,%d) = %+v, want %+v", col, row, gotV, wantV)
			}
		}
	}
}

func TestStore_Remove_MissingFileIsNotAnError(t *testing.T) {
	s := New(dirProvider(t.TempDir()))
	if err := s.Remove("never-written"); err != nil {
		t.Errorf("Remove on a missing file should be a no-op, got %v", err)
	}
}

func TestStore_Remove_ThenReadFails(t *testing.T) {
	s := New(dirProvider(t.TempDir()))
	f := frame.New([]*frame.Column{{Name: "x", Type: frame.DTypeI64, Values: []frame.CellValue{frame.IntValue(frame.DTypeI64, 1)}}})
	s.Write("snap-2", f)
	s.Remove("snap-2")
	if _, err := s.Read("snap-2"); err == nil {
		t.Error("Read after Remove should fail")
	}
}
