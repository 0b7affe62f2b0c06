package event

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

// writeXLSXFixture assembles a minimal workbook with one sheet of event
// records. The relationship target carries a leading slash, which real-world
// exporters emit and the loader must normalize.
func writeXLSXFixture(t *testing.T) string {
	t.Helper()

	workbook := `<?xml version="1.0"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <sheets><sheet name="Events" sheetId="1" r:id="rId1"/></sheets>
</workbook>`
	rels := `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="/xl/worksheets/data.xml"/>
</Relationships>`
	shared := `<?xml version="1.0"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="10" uniqueCount="10">
  <si><t>report_id</t></si>
  <si><t>date_received</t></si>
  <si><t>manufacturer_name</t></si>
  <si><t>brand_name</t></si>
  <si><t>product_problems</t></si>
  <si><t>R1</t></si>
  <si><t>Medtronic, Inc.</t></si>
  <si><t>PUMP-A</t></si>
  <si><t>['Break', 'Leak']</t></si>
  <si><t>2023-02-01</t></si>
</sst>`
	// Row 2 stores the date as an Excel serial (44941 == 2023-01-15),
	// row 3 as a plain string cell. Row 3 leaves most columns blank.
	sheet := `<?xml version="1.0"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <sheetData>
    <row r="1">
      <c r="A1" t="s"><v>0</v></c>
      <c r="B1" t="s"><v>1</v></c>
      <c r="C1" t="s"><v>2</v></c>
      <c r="D1" t="s"><v>3</v></c>
      <c r="E1" t="s"><v>4</v></c>
    </row>
    <row r="2">
      <c r="A2" t="s"><v>5</v></c>
      <c r="B2"><v>44941</v></c>
      <c r="C2" t="s"><v>6</v></c>
      <c r="D2" t="s"><v>7</v></c>
      <c r="E2" t="s"><v>8</v></c>
    </row>
    <row r="3">
      <c r="A3" t="is"><is><t>R2</t></is></c>
      <c r="B3" t="s"><v>9</v></c>
    </row>
  </sheetData>
</worksheet>`

	path := filepath.Join(t.TempDir(), "events.xlsx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	zw := zip.NewWriter(f)
	entries := map[string]string{
		"xl/workbook.xml":            workbook,
		"xl/_rels/workbook.xml.rels": rels,
		"xl/sharedStrings.xml":       shared,
		"xl/worksheets/data.xml":     sheet,
	}
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return path
}

func TestXLSXLoader(t *testing.T) {
	path := writeXLSXFixture(t)
	res, err := LoadFile(path, DateFail)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if res.Rejected != 0 {
		t.Fatalf("rejected = %d, want 0", res.Rejected)
	}
	if len(res.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(res.Records))
	}

	r1 := res.Records[0]
	if r1.ReportID != "R1" {
		t.Fatalf("report id = %q", r1.ReportID)
	}
	if got := r1.DateReceived.Format("2006-01-02"); got != "2023-01-15" {
		t.Fatalf("serial date = %s, want 2023-01-15", got)
	}
	if r1.Manufacturer != "Medtronic, Inc." {
		t.Fatalf("manufacturer = %q", r1.Manufacturer)
	}
	if r1.Brand != "PUMP-A" {
		t.Fatalf("brand = %q", r1.Brand)
	}
	if len(r1.ProductProblems) != 2 || r1.ProductProblems[0] != "Break" || r1.ProductProblems[1] != "Leak" {
		t.Fatalf("product problems = %#v", r1.ProductProblems)
	}

	r2 := res.Records[1]
	if r2.ReportID != "R2" {
		t.Fatalf("inline-string report id = %q", r2.ReportID)
	}
	if got := r2.DateReceived.Format("2006-01-02"); got != "2023-02-01" {
		t.Fatalf("string date = %s, want 2023-02-01", got)
	}
	if r2.Manufacturer != "" || r2.Brand != "" {
		t.Fatalf("blank columns not empty: %q %q", r2.Manufacturer, r2.Brand)
	}
}

func TestParseCellDateSerial(t *testing.T) {
	got, err := parseCellDate("44927")
	if err != nil {
		t.Fatalf("parseCellDate: %v", err)
	}
	if s := got.Format("2006-01-02"); s != "2023-01-01" {
		t.Fatalf("serial 44927 = %s, want 2023-01-01", s)
	}
	if _, err := parseCellDate("not a date"); err == nil {
		t.Fatalf("expected error for garbage input")
	}
}
