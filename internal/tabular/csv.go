package tabular

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/workdeck/workdeck/internal/errors"
)

// CSVImporter reads delimiter-separated text into a Table.
type CSVImporter struct {
	// Delimiter defaults to a comma.
	Delimiter rune
	// HasHeader treats the first row as column names.
	HasHeader bool
	// Encoding selects the input charset: "utf-8" (default), "utf-16"
	// or "latin-1".
	Encoding string
}

// Extensions implements Importer.
func (c *CSVImporter) Extensions() []string {
	return []string{".csv", ".tsv", ".txt"}
}

// Import implements Importer. Rows shorter than the header are padded;
// ragged rows longer than the header grow the column set.
func (c *CSVImporter) Import(ctx context.Context, r io.Reader) (*Table, error) {
	decoded, err := decodeReader(r, c.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(decoded)
	reader.Comma = c.Delimiter
	if reader.Comma == 0 {
		reader.Comma = ','
	}
	reader.FieldsPerRecord = -1

	table := &Table{}
	first := true

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewIOError(errors.ErrCodeInvalidPath, "read csv", err)
		}

		if first && c.HasHeader {
			for _, name := range record {
				table.Columns = append(table.Columns, Column{Name: strings.TrimSpace(name), Type: "string"})
			}
			first = false
			continue
		}
		first = false

		for len(table.Columns) < len(record) {
			table.Columns = append(table.Columns,
				Column{Name: fmt.Sprintf("Column %d", len(table.Columns)+1), Type: "string"})
		}
		for len(record) < len(table.Columns) {
			record = append(record, "")
		}

		table.Rows = append(table.Rows, record)
	}

	return table, nil
}

func decodeReader(r io.Reader, name string) (io.Reader, error) {
	var enc encoding.Encoding

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "utf-16", "utf16":
		enc = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case "latin-1", "latin1", "iso-8859-1":
		enc = charmap.ISO8859_1
	default:
		return nil, errors.NewConfigError(
			errors.ErrCodeConfigInvalid, "unsupported import encoding: "+name)
	}

	return transform.NewReader(r, enc.NewDecoder()), nil
}
