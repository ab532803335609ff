package numberuploads

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	minDigits = 7
	maxDigits = 15
)

var (
	// ErrUnsupportedFile is returned for content that is not plain text or CSV.
	ErrUnsupportedFile = errors.New("file must be a .csv or .txt text file")
	// ErrNoNumbers is returned when a file holds no usable phone number.
	ErrNoNumbers = errors.New("file contains no phone numbers")
)

// ParseResult is the outcome of reading an upload.
type ParseResult struct {
	Numbers    []string
	Duplicates int
	Rejected   []string
}

// Parse reads phone numbers from a CSV (one per cell) or plain text file (one
// per line). Numbers are normalized to digits with an optional leading '+';
// duplicates are dropped keeping first-seen order. Cells that do not look
// like a phone number, such as a header row, are returned in Rejected.
func Parse(fileName string, data []byte) (*ParseResult, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext != ".csv" && ext != ".txt" {
		return nil, ErrUnsupportedFile
	}
	if !isText(data) {
		return nil, ErrUnsupportedFile
	}

	var (
		cells []string
		err   error
	)
	if ext == ".csv" {
		cells, err = csvCells(data)
	} else {
		cells, err = lineCells(data)
	}
	if err != nil {
		return nil, err
	}

	result := &ParseResult{}
	seen := make(map[string]struct{}, len(cells))
	for _, cell := range cells {
		number, ok := normalize(cell)
		if !ok {
			result.Rejected = append(result.Rejected, cell)
			continue
		}
		if _, dup := seen[number]; dup {
			result.Duplicates++
			continue
		}
		seen[number] = struct{}{}
		result.Numbers = append(result.Numbers, number)
	}
	if len(result.Numbers) == 0 {
		return nil, ErrNoNumbers
	}
	return result, nil
}

func isText(data []byte) bool {
	if len(bytes.TrimSpace(data)) == 0 {
		return true
	}
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func csvCells(data []byte) ([]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var cells []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return cells, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		for _, field := range record {
			if field = strings.TrimSpace(field); field != "" {
				cells = append(cells, field)
			}
		}
	}
}

func lineCells(data []byte) ([]string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	var cells []string
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			cells = append(cells, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}
	return cells, nil
}

// normalize strips common separators and checks the digit count.
func normalize(raw string) (string, bool) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "\ufeff")
	var b strings.Builder
	digits := 0
	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			digits++
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return "", false
		}
	}
	if digits < minDigits || digits > maxDigits {
		return "", false
	}
	return b.String(), true
}
