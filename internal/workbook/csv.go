package workbook

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeCSV reads a single-sheet text export. Spanish-locale exports use
// ';' because ',' is the decimal separator, so the delimiter is sniffed
// from the first lines of the file. Non UTF-8 input is read as Windows-1252.
func decodeCSV(name string, data []byte) ([]Sheet, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
		}
		data = decoded
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return []Sheet{{Name: name, Rows: toCells(rows)}}, nil
}

const sniffLines = 10

var delimiters = []rune{',', ';', '\t', '|'}

func sniffDelimiter(data []byte) rune {
	counts := make([]int, len(delimiters))
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for seen := 0; seen < sniffLines && sc.Scan(); {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		seen++
		for i, d := range delimiters {
			counts[i] += strings.Count(line, string(d))
		}
	}
	best := 0
	for i := range delimiters {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return delimiters[best]
}
