package a1

import "testing"

func TestEncodeColumn_BoundaryValues(t *testing.T) {
	cases := []struct {
		col  int
		want string
	}{
		{0, "A"},
		{25, "Z"},
		{26, "AA"},
		{701, "ZZ"},
		{702, "AAA"},
	}
	for _, c := range cases {
		if got := EncodeColumn(c.col); got != c.want {
			t.Errorf("EncodeColumn(%d) = %q, want %q", c.col, got, c.want)
		}
	}
}

func TestEncodeDecodeColumn_Bijection(t *testing.T) {
	for n := 0; n < 5000; n++ {
		name := EncodeColumn(n)
		if got := DecodeColumn(name); got != n {
			t.Fatalf("DecodeColumn(EncodeColumn(%d)) = %d, want %d (name=%q)", n, got, n, name)
		}
	}
}

func TestNextColumnName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"A", "B"},
		{"Z", "AA"},
		{"AZ", "BA"},
		{"ZZ", "AAA"},
	}
	for _, c := range cases {
		if got := NextColumnName(c.in); got != c.want {
			t.Errorf("NextColumnName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNextColumnName_MatchesEncodeOfDecodePlusOne(t *testing.T) {
	for n := 0; n < 2000; n++ {
		name := EncodeColumn(n)
		want := EncodeColumn(n + 1)
		if got := NextColumnName(name); got != want {
			t.Fatalf("NextColumnName(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestDecodeColumn_Invalid(t *testing.T) {
	for _, s := range []string{"", "1", "A1", "A-"} {
		if got := DecodeColumn(s); got != -1 {
			t.Errorf("DecodeColumn(%q) = %d, want -1", s, got)
		}
	}
}

func TestCellName(t *testing.T) {
	cases := []struct {
		col, row int
		want     string
	}{
		{0, 0, "A1"},
		{1, 0, "B1"},
		{0, 1, "A2"},
		{27, 0, "AB1"},
	}
	for _, c := range cases {
		if got := CellName(c.col, c.row); got != c.want {
			t.Errorf("CellName(%d,%d) = %q, want %q", c.col, c.row, got, c.want)
		}
	}
}

func TestParseCell(t *testing.T) {
	cases := []struct {
		token        string
		wantCol      int
		wantRow      int
		wantOK       bool
	}{
		{"A1", 0, 0, true},
		{"BC27", 54, 26, true},
		{"5", 0, 4, true},
		{"H", 7, 0, true},
		{"", 0, 0, false},
		{"!!", 0, 0, false},
	}
	for _, c := range cases {
		got, ok := ParseCell(c.token)
		if ok != c.wantOK {
			t.Fatalf("ParseCell(%q) ok = %v, want %v", c.token, ok, c.wantOK)
		}
		if !ok {
			continue
		}
		if got.Col != c.wantCol || got.Row != c.wantRow {
			t.Errorf("ParseCell(%q) = %+v, want col=%d row=%d", c.token, got, c.wantCol, c.wantRow)
		}
	}
}

func TestParseRange(t *testing.T) {
	r, ok := ParseRange("A1:B2")
	if !ok {
		t.Fatal("ParseRange(A1:B2) failed")
	}
	if r.Col1 != 0 || r.Row1 != 0 || r.Col2 != 1 || r.Row2 != 1 {
		t.Errorf("ParseRange(A1:B2) = %+v", r)
	}

	single, ok := ParseRange("H")
	if !ok {
		t.Fatal("ParseRange(H) failed")
	}
	if single.Col1 != 7 || single.Row1 != 0 || single.Col2 != 7 || single.Row2 != 0 {
		t.Errorf("ParseRange(H) = %+v", single)
	}

	if _, ok := ParseRange(""); ok {
		t.Error("ParseRange(\"\") should fail")
	}
}
