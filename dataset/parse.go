package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrParse is wrapped by every malformed-input error.
var ErrParse = errors.New("dataset: parse error")

type options struct {
	delimiter  rune
	comment    rune
	skipHeader bool
}

func defaultOptions() options {
	return options{
		delimiter: ',',
		comment:   '#',
	}
}

// Option configures parsing.
type Option func(*options)

// WithDelimiter sets the feature separator.
func WithDelimiter(r rune) Option {
	return func(o *options) { o.delimiter = r }
}

// WithComment sets the comment marker. Zero disables comments.
func WithComment(r rune) Option {
	return func(o *options) { o.comment = r }
}

// WithHeader skips the first non-comment line.
func WithHeader() Option {
	return func(o *options) { o.skipHeader = true }
}

// ParseDelimited reads one sample per line. Rows are returned as parsed;
// differing row lengths are left for the engine to reject.
func ParseDelimited(r io.Reader, opts ...Option) ([][]float64, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	cr := csv.NewReader(r)
	cr.Comma = o.delimiter
	cr.Comment = o.comment
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var rows [][]float64
	header := o.skipHeader
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		if header {
			header = false
			continue
		}

		row := make([]float64, 0, len(record))
		for i, field := range record {
			field = strings.TrimSpace(field)
			if field == "" && i == len(record)-1 && i > 0 {
				// Trailing delimiter.
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				line, col := cr.FieldPos(i)
				return nil, fmt.Errorf("%w: line %d, column %d: %q is not a number", ErrParse, line, col, field)
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}
}

// FormatRow renders a row in the text format, using the shortest
// representation that parses back to the same values.
func FormatRow(row []float64, delimiter rune) string {
	var b strings.Builder
	for i, v := range row {
		if i > 0 {
			b.WriteRune(delimiter)
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return b.String()
}
