package reference

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/turtacn/ecowarn/internal/domain/exposure"
	"github.com/turtacn/ecowarn/pkg/errors"
)

// Format is the on-disk encoding of a reference table.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// SheetName is the worksheet read from xlsx reference files.
const SheetName = "Sheet1"

// ParseFormat converts a name or file extension into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "xlsx", "":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", errors.Validation("format", fmt.Sprintf("unsupported reference format %q", s))
	}
}

// FileName returns the conventional file name of a reference table, e.g.
// "aquatic_MDA_train.xlsx".
func FileName(medium exposure.Medium, endpoint exposure.Endpoint, format Format) string {
	return fmt.Sprintf("%s_%s_train.%s", medium, endpoint, format)
}

// FormatFromPath infers the Format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Decode reads a reference table in the given format.  The layout is: column
// 0 an identifier (kept but unused), column 1 the integer label, columns 2..
// the features, first row the header.
func Decode(r io.Reader, format Format, medium exposure.Medium, endpoint exposure.Endpoint) (*Table, error) {
	var (
		records [][]string
		err     error
	)
	switch format {
	case FormatCSV:
		records, err = readCSV(r)
	case FormatXLSX:
		records, err = readXLSX(r)
	default:
		return nil, errors.Validation("format", fmt.Sprintf("unsupported reference format %q", format))
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReferenceDataInvalid, "reading reference table").
			WithDetail(FileName(medium, endpoint, format))
	}
	return FromRecords(records, medium, endpoint)
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = false
	return cr.ReadAll()
}

func readXLSX(r io.Reader) ([][]string, error) {
	// excelize needs random access; buffer the whole workbook.
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	// Raw values: a number format on a cell must not round what is trained on.
	return f.GetRows(SheetName, excelize.Options{RawCellValue: true})
}

// FromRecords builds a Table from a header row plus data rows of raw cells.
// Completely blank rows are skipped; rows shorter than the header are padded
// with empty cells, which are rejected as missing values.
func FromRecords(records [][]string, medium exposure.Medium, endpoint exposure.Endpoint) (*Table, error) {
	key := fmt.Sprintf("%s/%s", medium, endpoint)
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeReferenceDataInvalid, "reference table is empty").WithDetail(key)
	}
	header := records[0]
	if len(header) < 2 {
		return nil, errors.New(errors.ErrCodeReferenceDataInvalid,
			"reference table needs an identifier and a label column").WithDetail(key)
	}

	names := make([]string, 0, len(header)-2)
	seen := make(map[string]bool, len(header))
	for i, h := range header[2:] {
		if seen[h] {
			return nil, errors.New(errors.ErrCodeReferenceDataInvalid,
				fmt.Sprintf("duplicate feature column %q at column %d; rename or remove the repeated header", h, i+3)).WithDetail(key)
		}
		seen[h] = true
		names = append(names, h)
	}

	t := &Table{Medium: medium, Endpoint: endpoint, FeatureNames: names}
	for i, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		line := i + 2
		if len(rec) > len(header) {
			return nil, errors.New(errors.ErrCodeReferenceDataInvalid,
				fmt.Sprintf("row %d has %d cells, header has %d", line, len(rec), len(header))).WithDetail(key)
		}
		cells := make([]string, len(header))
		copy(cells, rec)

		label, err := parseLabel(cells[1])
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeReferenceDataInvalid,
				fmt.Sprintf("row %d: invalid label %q", line, cells[1])).WithDetail(key)
		}
		features := make([]float64, len(names))
		for j, cell := range cells[2:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeReferenceDataInvalid,
					fmt.Sprintf("row %d column %q: invalid value %q", line, names[j], cell)).WithDetail(key)
			}
			features[j] = v
		}
		t.Rows = append(t.Rows, Row{ID: cells[0], Label: label, Features: features})
	}
	return t, nil
}

// parseLabel accepts integer labels, including integral floats such as "2.0"
// written by spreadsheet tools.
func parseLabel(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("label %q is not an integer", s)
	}
	return int(f), nil
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

//Personal.AI order the ending
