package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
	}{
		{"data.json", FormatJSON},
		{"data.JSON", FormatJSON},
		{"data.csv", FormatCSV},
		{"latency.CSV", FormatCSV},
		{"data.txt", FormatUnsupported},
		{"data", FormatUnsupported},
		{"archive.json.gz", FormatUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.filename))
		})
	}
}

func TestParseJSON(t *testing.T) {
	values, err := ParseBytes([]byte(`[1.5, 2, 3.25, -4]`), "data.json")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2, 3.25, -4}, values)
}

func TestParseJSONEmpty(t *testing.T) {
	values, err := ParseBytes([]byte(`[]`), "data.json")
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestParseJSONMalformed(t *testing.T) {
	tests := []struct {
		name string
		give string
	}{
		{"object instead of array", `{"values": [1, 2]}`},
		{"string element", `[1, "two", 3]`},
		{"truncated", `[1, 2,`},
		{"garbage", `not json at all`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes([]byte(tt.give), "data.json")
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "expected array of numbers")
		})
	}
}

func TestParseCSV(t *testing.T) {
	give := "value\n1.5\n2\n3.25\n"
	values, err := ParseBytes([]byte(give), "data.csv")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2, 3.25}, values)
}

func TestParseCSVExtraColumns(t *testing.T) {
	give := "timestamp,value\n100,1.5\n200,2.5\n"
	values, err := ParseBytes([]byte(give), "data.csv")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2.5}, values)
}

func TestParseCSVMissingValueColumn(t *testing.T) {
	_, err := ParseBytes([]byte("amount\n1.5\n"), "data.csv")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "value")
}

func TestParseCSVMalformedNumber(t *testing.T) {
	_, err := ParseBytes([]byte("value\nabc\n"), "data.csv")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse CSV record")
}

func TestParseUnsupportedFormat(t *testing.T) {
	_, err := ParseBytes([]byte("1\n2\n"), "data.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseJSONLimit(t *testing.T) {
	_, err := parse(strings.NewReader(`[1, 2, 3, 4]`), FormatJSON, 3)
	assert.ErrorIs(t, err, ErrDatasetTooLarge)

	values, err := parse(strings.NewReader(`[1, 2, 3]`), FormatJSON, 3)
	require.NoError(t, err)
	assert.Len(t, values, 3)
}

func TestParseCSVLimit(t *testing.T) {
	_, err := parse(strings.NewReader("value\n1\n2\n3\n4\n"), FormatCSV, 3)
	assert.ErrorIs(t, err, ErrDatasetTooLarge)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "values.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[10, 20, 30]`), 0644))

	values, err := ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30}, values)

	csvPath := filepath.Join(dir, "values.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("value\n10\n20\n30\n"), 0644))

	values, err = ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30}, values)
}

func TestReadFileUnsupported(t *testing.T) {
	_, err := ReadFile("values.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open")
}
