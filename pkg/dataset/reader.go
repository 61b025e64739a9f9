// Package dataset decodes caller-supplied JSON or CSV payloads into a flat
// sequence of float64 values, enforcing a hard element ceiling so oversized
// uploads fail fast instead of exhausting memory.
package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// MaxDatasetSize is the default ceiling on the number of values accepted per
// request or file. It is a resource limit, not an algorithmic one.
const MaxDatasetSize = 10_000_000

var (
	// ErrUnsupportedFormat is returned for filenames that are neither .json
	// nor .csv.
	ErrUnsupportedFormat = errors.New("unsupported file format, use .json or .csv")

	// ErrDatasetTooLarge is returned once the decoder reads past the element
	// ceiling.
	ErrDatasetTooLarge = errors.Errorf("dataset exceeds the maximum of %d values", MaxDatasetSize)
)

// Format identifies the wire format of a dataset payload. It is resolved once
// at the ingestion boundary from the filename extension.
type Format int

const (
	FormatUnsupported Format = iota
	FormatJSON
	FormatCSV
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	}
	return "unsupported"
}

// DetectFormat resolves the payload format from the filename extension,
// case-insensitively.
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON
	case ".csv":
		return FormatCSV
	}
	return FormatUnsupported
}

// Parse decodes values from r according to format, applying the
// MaxDatasetSize ceiling.
func Parse(r io.Reader, format Format) ([]float64, error) {
	return parse(r, format, MaxDatasetSize)
}

// ParseBytes decodes values from data, resolving the format from filename.
func ParseBytes(data []byte, filename string) ([]float64, error) {
	return Parse(bytes.NewReader(data), DetectFormat(filename))
}

// ReadFile loads values from a .json or .csv file on disk.
func ReadFile(path string) ([]float64, error) {
	format := DetectFormat(path)
	if format == FormatUnsupported {
		return nil, ErrUnsupportedFormat
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s file", format)
	}
	defer f.Close()

	return Parse(f, format)
}

func parse(r io.Reader, format Format, limit int) ([]float64, error) {
	switch format {
	case FormatJSON:
		return parseJSON(r, limit)
	case FormatCSV:
		return parseCSV(r, limit)
	}
	return nil, ErrUnsupportedFormat
}

// parseJSON decodes a flat JSON array of numbers token by token, so the limit
// check does not require buffering the whole document.
func parseJSON(r io.Reader, limit int) ([]float64, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse JSON, expected array of numbers")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, errors.New("failed to parse JSON, expected array of numbers")
	}

	var values []float64
	for dec.More() {
		var v float64
		if err := dec.Decode(&v); err != nil {
			return nil, errors.Wrap(err, "failed to parse JSON, expected array of numbers")
		}

		if len(values) >= limit {
			return nil, ErrDatasetTooLarge
		}

		values = append(values, v)
	}

	if _, err := dec.Token(); err != nil {
		return nil, errors.Wrap(err, "failed to parse JSON, expected array of numbers")
	}

	return values, nil
}

// parseCSV decodes rows under a header that must contain a "value" column.
func parseCSV(r io.Reader, limit int) ([]float64, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV header")
	}

	valueIdx := -1
	for i, name := range header {
		if strings.TrimSpace(name) == "value" {
			valueIdx = i
			break
		}
	}
	if valueIdx < 0 {
		return nil, errors.New("CSV header must contain a \"value\" column")
	}

	var values []float64
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse CSV record")
		}

		v, err := strconv.ParseFloat(strings.TrimSpace(record[valueIdx]), 64)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse CSV record")
		}

		if len(values) >= limit {
			return nil, ErrDatasetTooLarge
		}

		values = append(values, v)
	}

	return values, nil
}
