// Package workbook decodes uploaded spreadsheet files into raw cell grids.
package workbook

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupported = errors.New("unsupported file type")
	ErrUnreadable  = errors.New("file could not be decoded")
)

// Sheet is one worksheet as a grid of raw cell values. Rows may have
// different lengths.
type Sheet struct {
	Name string
	Rows [][]any
}

// Extensions accepted by Decode.
var Extensions = []string{".xlsx", ".xls", ".csv"}

// Supported reports whether filename has an accepted extension.
func Supported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Decode reads every sheet of the file. The extension picks the decoder;
// files with an unknown or misleading extension are tried as xlsx, then
// xls, then csv.
func Decode(filename string, data []byte) ([]Sheet, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrUnreadable)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		sheets, err := decodeXLSX(data)
		if err == nil {
			return sheets, nil
		}
		log.Printf("[WORKBOOK] %s: xlsx decode failed, probing other formats: %v", filename, err)
	case ".xls":
		sheets, err := decodeXLS(data)
		if err == nil {
			return sheets, nil
		}
		log.Printf("[WORKBOOK] %s: xls decode failed, probing other formats: %v", filename, err)
	case ".csv", ".txt":
		return decodeCSV(filenameStem(filename), data)
	}
	return probe(filename, data)
}

func probe(filename string, data []byte) ([]Sheet, error) {
	if sheets, err := decodeXLSX(data); err == nil {
		return sheets, nil
	}
	if sheets, err := decodeXLS(data); err == nil {
		return sheets, nil
	}
	if looksBinary(data) {
		return nil, fmt.Errorf("%w: %s", ErrUnreadable, filename)
	}
	return decodeCSV(filenameStem(filename), data)
}

func filenameStem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// looksBinary reports whether the first bytes contain NULs, which text
// exports never do.
func looksBinary(data []byte) bool {
	n := len(data)
	if n > 512 {
		n = 512
	}
	return bytes.IndexByte(data[:n], 0) >= 0
}
