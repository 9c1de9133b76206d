package csv

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeUTF wraps r so it yields UTF-8. A UTF-8 or UTF-16 byte order mark
// selects the encoding and is dropped; without one the input is read as
// UTF-8 with invalid sequences replaced by U+FFFD.
func decodeUTF(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}
