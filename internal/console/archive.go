package console

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

// WriteArchive writes the gzip-compressed console text to w. This backs
// the console's save-logs action and the /logs/archive endpoint.
func (b *Buffer) WriteArchive(w io.Writer, redacted bool) error {
	gz := gzip.NewWriter(w)

	if _, err := io.WriteString(gz, b.Text(redacted)); err != nil {
		gz.Close()
		return err
	}

	return gz.Close()
}
