package event

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

// Load reads the first worksheet of an .xlsx export. The header row is mapped
// the same way as for CSV files; extra columns are ignored.
func (xlsxLoader) Load(path string, policy DatePolicy) (*LoadResult, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}

	sheetXML := zipEntry(zr, firstSheetPath(zr))
	if sheetXML == nil {
		return nil, fmt.Errorf("xlsx %s: no worksheet found", path)
	}
	shared := parseSharedStrings(zipEntry(zr, "xl/sharedStrings.xml"))

	rr := newSheetRows(sheetXML, shared)
	header, ok := rr.Next()
	if !ok {
		return &LoadResult{}, nil
	}
	cols := headerIndex(header)

	res := &LoadResult{}
	row := 1
	for {
		rec, ok := rr.Next()
		if !ok {
			break
		}
		row++
		field := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[idx])
		}
		id := field("report_id")
		if id == "" {
			id = field("report_number")
		}
		manufacturer := field("manufacturer_name")
		if manufacturer == "" {
			manufacturer = field("manufacturer_g1_name")
		}

		date, err := parseCellDate(field("date_received"))
		if err != nil {
			if policy == DateSkip {
				res.Rejected++
				continue
			}
			return nil, fmt.Errorf("row %d (report %s): %w", row, id, err)
		}

		res.Records = append(res.Records, Record{
			ReportID:        id,
			DateReceived:    date,
			Manufacturer:    manufacturer,
			Brand:           field("brand_name"),
			ProductProblems: splitProblemList(field("product_problems")),
			PatientProblems: splitProblemList(field("patient_problems")),
		})
	}
	return res, nil
}

// parseCellDate handles the usual date layouts plus Excel serial numbers,
// which spreadsheets substitute for date-formatted cells.
func parseCellDate(s string) (time.Time, error) {
	t, err := ParseDate(s)
	if err == nil {
		return t, nil
	}
	if n, convErr := strconv.ParseFloat(s, 64); convErr == nil && n > 0 && n < 200000 {
		// Excel epoch: days since 1899-12-30.
		epoch := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
		return epoch.AddDate(0, 0, int(n)), nil
	}
	return time.Time{}, err
}

// firstSheetPath resolves the zip path of the workbook's first sheet via the
// workbook relationships, falling back to the conventional sheet1.xml.
func firstSheetPath(zr *zip.Reader) string {
	wb := zipEntry(zr, "xl/workbook.xml")
	rels := parseRelationships(zipEntry(zr, "xl/_rels/workbook.xml.rels"))
	if rid := firstSheetRID(wb); rid != "" {
		if target, ok := rels[rid]; ok {
			target = strings.TrimPrefix(target, "/")
			if !strings.HasPrefix(target, "xl/") {
				target = "xl/" + target
			}
			return target
		}
	}
	return "xl/worksheets/sheet1.xml"
}

func firstSheetRID(workbookXML []byte) string {
	if len(workbookXML) == 0 {
		return ""
	}
	dec := xml.NewDecoder(bytes.NewReader(workbookXML))
	for {
		tok, err := dec.Token()
		if err != nil {
			return ""
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "sheet" {
			for _, a := range se.Attr {
				if a.Name.Local == "id" {
					return a.Value
				}
			}
			return ""
		}
	}
}

func parseRelationships(data []byte) map[string]string {
	out := map[string]string{}
	if len(data) == 0 {
		return out
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Relationship" {
			continue
		}
		var id, target string
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "Id":
				id = a.Value
			case "Target":
				target = a.Value
			}
		}
		if id != "" && target != "" {
			out[id] = target
		}
	}
}

func zipEntry(zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil
			}
			defer rc.Close()
			b, _ := io.ReadAll(rc)
			return b
		}
	}
	return nil
}

func parseSharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	var buf strings.Builder
	var inT bool
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inT = true
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "t":
				inT = false
			case "si":
				out = append(out, buf.String())
				buf.Reset()
			}
		case xml.CharData:
			if inT {
				buf.Write([]byte(se))
			}
		}
	}
}

// sheetRows streams worksheet rows as string slices, resolving shared-string
// cells against the workbook's shared string table.
type sheetRows struct {
	dec    *xml.Decoder
	shared []string
}

func newSheetRows(data []byte, shared []string) *sheetRows {
	return &sheetRows{dec: xml.NewDecoder(bytes.NewReader(data)), shared: shared}
}

func (r *sheetRows) Next() ([]string, bool) {
	var row []string
	inRow := false
	maxCol := 0
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "row":
				inRow = true
				row = nil
				maxCol = 0
			case "c":
				if !inRow {
					continue
				}
				var ref, typ string
				for _, a := range se.Attr {
					switch a.Name.Local {
					case "r":
						ref = a.Value
					case "t":
						typ = a.Value
					}
				}
				idx := colIndex(ref)
				if idx < 0 {
					idx = maxCol
				}
				if idx+1 > maxCol {
					maxCol = idx + 1
				}
				val := r.cellValue(typ)
				if len(row) <= idx {
					grown := make([]string, idx+1)
					copy(grown, row)
					row = grown
				}
				row[idx] = val
			}
		case xml.EndElement:
			if se.Name.Local == "row" {
				if len(row) < maxCol {
					grown := make([]string, maxCol)
					copy(grown, row)
					row = grown
				}
				return row, true
			}
		}
	}
}

// cellValue consumes tokens up to </c>, capturing <v> (or inline <is><t>)
// text and resolving shared-string indices.
func (r *sheetRows) cellValue(typ string) string {
	var val string
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return val
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				var sb strings.Builder
				for {
					inner, err := r.dec.Token()
					if err != nil {
						break
					}
					if end, ok := inner.(xml.EndElement); ok && (end.Name.Local == "v" || end.Name.Local == "t") {
						break
					}
					if ch, ok := inner.(xml.CharData); ok {
						sb.Write([]byte(ch))
					}
				}
				val = sb.String()
			}
		case xml.EndElement:
			if se.Name.Local == "c" {
				if typ == "s" {
					if i, err := strconv.Atoi(val); err == nil && i >= 0 && i < len(r.shared) {
						return r.shared[i]
					}
					return ""
				}
				return val
			}
		}
	}
}

// colIndex converts a cell reference like "C12" to a 0-based column index.
func colIndex(ref string) int {
	idx := 0
	seen := false
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c < 'A' || c > 'Z' {
			break
		}
		idx = idx*26 + int(c-'A'+1)
		seen = true
	}
	if !seen {
		return -1
	}
	return idx - 1
}
