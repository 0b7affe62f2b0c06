package event

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

type csvLoader struct{}

func (csvLoader) CanLoad(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

func (csvLoader) Load(path string, policy DatePolicy) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	delim, err := sniffDelimiter(br, path)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(br)
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &LoadResult{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := headerIndex(header)

	res := &LoadResult{}
	row := 1
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", row+1, err)
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

		date, err := ParseDate(field("date_received"))
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

// sniffDelimiter peeks at the header line and picks the most frequent of the
// delimiters exports use. TSV files always use a tab.
func sniffDelimiter(br *bufio.Reader, path string) (rune, error) {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t', nil
	}
	peek, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("peek header: %w", err)
	}
	line := string(peek)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	best := ','
	bestCount := strings.Count(line, ",")
	for _, cand := range []rune{'|', ';'} {
		if n := strings.Count(line, string(cand)); n > bestCount {
			best = cand
			bestCount = n
		}
	}
	return best, nil
}

func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}
