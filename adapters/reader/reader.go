package reader

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"goeda/adapters/coercer"
	"goeda/domain/table"
	"goeda/internal/errors"
	"goeda/ports"

	"github.com/xuri/excelize/v2"
)

var _ ports.TableReader = (*DataReader)(nil)

// DataReader loads CSV, TSV and Excel files into a typed table
type DataReader struct {
	filePath string
	fileType string // "xlsx", "csv" or "tsv"
	coercer  *coercer.TypeCoercer
	maxRows  int // 0 means unlimited
}

// NewDataReader creates a reader for the given path using default coercion rules
func NewDataReader(filePath string) *DataReader {
	return NewDataReaderWithConfig(filePath, coercer.DefaultCoercionConfig())
}

// NewDataReaderWithConfig creates a reader with custom coercion thresholds
func NewDataReaderWithConfig(filePath string, cfg coercer.CoercionConfig) *DataReader {
	fileType := "csv"
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx", ".xls":
		fileType = "xlsx"
	case ".tsv":
		fileType = "tsv"
	}
	return &DataReader{
		filePath: filePath,
		fileType: fileType,
		coercer:  coercer.NewTypeCoercer(cfg),
	}
}

// WithMaxRows caps the number of data rows loaded; rows past the cap are
// dropped. Zero leaves the reader unlimited.
func (r *DataReader) WithMaxRows(n int) *DataReader {
	r.maxRows = n
	return r
}

// Read loads the file into a table.Table with inferred column kinds
func (r *DataReader) Read() (*table.Table, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("file %s", r.filePath))
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv", "tsv":
		rows, err = r.readDelimited()
	case "xlsx":
		rows, err = r.readExcel()
	default:
		return nil, errors.UnsupportedFormat("unsupported file type: " + r.fileType)
	}
	if err != nil {
		return nil, err
	}

	return r.buildTable(rows)
}

// ReadFrom parses content from an already-open stream, e.g. an HTTP
// upload, routed by the extension of name: xlsx streams go through
// excelize, everything else through the delimited parser. The name also
// labels the resulting table.
func (r *DataReader) ReadFrom(src io.Reader, name string) (*table.Table, error) {
	var rows [][]string
	var err error
	if r.fileType == "xlsx" {
		rows, err = r.parseExcelStream(src)
	} else {
		rows, err = r.parseDelimited(src)
	}
	if err != nil {
		return nil, err
	}
	t, err := r.buildTable(rows)
	if err != nil {
		return nil, err
	}
	t.Name = name
	return t, nil
}

func (r *DataReader) readDelimited() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", strings.ToUpper(r.fileType), err)
	}
	defer file.Close()
	return r.parseDelimited(file)
}

func (r *DataReader) parseDelimited(src io.Reader) ([][]string, error) {
	buffered := bufio.NewReader(src)

	delim := r.delimiter()
	if sample, err := buffered.Peek(sniffSampleSize); len(sample) > 0 && (err == nil || err == io.EOF) {
		delim = sniffDelimiter(string(sample), delim)
	}

	reader := csv.NewReader(buffered)
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse delimited data")
	}
	return rows, nil
}

// sniffSampleSize bounds the peek used for delimiter sniffing
const sniffSampleSize = 4096

// sniffDelimiter picks the candidate separator that occurs most often in
// the header line, keeping the extension-based fallback when none appears.
func sniffDelimiter(sample string, fallback rune) rune {
	if i := strings.IndexByte(sample, '\n'); i >= 0 {
		sample = sample[:i]
	}

	best := fallback
	bestCount := 0
	for _, cand := range []rune{',', '\t', ';'} {
		if n := strings.Count(sample, string(cand)); n > bestCount {
			best = cand
			bestCount = n
		}
	}
	return best
}

func (r *DataReader) delimiter() rune {
	if r.fileType == "tsv" {
		return '\t'
	}
	return ','
}

func (r *DataReader) readExcel() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()
	return firstSheetRows(f)
}

// parseExcelStream opens xlsx content from a stream. Content that is not a
// valid workbook fails here instead of being misread as delimited text.
func (r *DataReader) parseExcelStream(src io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, errors.UnsupportedFormat("not a valid xlsx workbook: " + err.Error())
	}
	defer f.Close()
	return firstSheetRows(f)
}

func firstSheetRows(f *excelize.File) ([][]string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.MalformedInput("Excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// buildTable converts raw string rows (header + data) into a typed table
func (r *DataReader) buildTable(rows [][]string) (*table.Table, error) {
	if len(rows) == 0 {
		return nil, errors.MalformedInput("file is empty")
	}

	header := rows[0]
	ncol := len(header)
	if ncol == 0 {
		return nil, errors.MalformedInput("header row has no columns")
	}

	names := make([]string, ncol)
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		names[i] = name
	}

	// Transpose data rows into per-column raw strings, padding short rows
	data := rows[1:]
	if r.maxRows > 0 && len(data) > r.maxRows {
		data = data[:r.maxRows]
	}
	raws := make([][]string, ncol)
	for j := 0; j < ncol; j++ {
		raws[j] = make([]string, len(data))
	}
	for i, rec := range data {
		for j := 0; j < ncol; j++ {
			if j < len(rec) {
				raws[j][i] = rec[j]
			}
		}
	}

	t := &table.Table{
		Name:    filepath.Base(r.filePath),
		Columns: make([]table.Column, ncol),
	}
	for j := 0; j < ncol; j++ {
		kind := r.coercer.InferColumnKind(raws[j])
		t.Columns[j] = r.coercer.CoerceColumn(names[j], kind, raws[j])
	}

	return t, nil
}
