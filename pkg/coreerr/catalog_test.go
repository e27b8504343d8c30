package coreerr

import "testing"

func TestNew_FormatsDetailAndCarriesCatalogMetadata(t *testing.T) {
	err := New(IOSpill, "create %s: %v", "/tmp/x.ersnap", "permission denied")
	if err.Code != IOSpill {
		t.Errorf("Code = %v, want %v", err.Code, IOSpill)
	}
	if !err.Retryable {
		t.Error("IOSpill should be retryable per the catalog entry")
	}
	wantMsg := "IO_SPILL: create /tmp/x.ersnap: permission denied | next: Verify the scratch directory is writable; Retry the operation"
	if err.Error() != wantMsg {
		t.Errorf("Error() = %q, want %q", err.Error(), wantMsg)
	}
}

func TestNew_EmptyFormatFallsBackToCatalogMessage(t *testing.T) {
	err := New(TypeMismatch, "")
	if err.Detail != "value cannot be cast to column dtype" {
		t.Errorf("Detail = %q, want catalog default message", err.Detail)
	}
}

func TestNew_UnknownCodeStillConstructs(t *testing.T) {
	err := New(Code("SOMETHING_NEW"), "detail %d", 7)
	if err.Retryable {
		t.Error("an unknown code should default to non-retryable")
	}
	if err.Detail != "detail 7" {
		t.Errorf("Detail = %q, want %q", err.Detail, "detail 7")
	}
}

func TestIs_MatchesCodeNotMessage(t *testing.T) {
	err := New(OutOfRange, "row 99 out of bounds")
	if !Is(err, OutOfRange) {
		t.Error("Is should match on Code")
	}
	if Is(err, Parse) {
		t.Error("Is should not match a different Code")
	}
	if Is(nil, OutOfRange) {
		t.Error("Is(nil, ...) should be false")
	}
}
