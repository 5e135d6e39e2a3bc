package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/isodata"
	"github.com/hupe1980/isodata/codec"
	"github.com/hupe1980/isodata/dataset"
)

// Format selects a report layout.
type Format string

const (
	FormatSummary  Format = "summary"
	FormatClusters Format = "clusters"
	FormatJSON     Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatSummary, FormatClusters, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("report: unknown format %q (want summary, clusters or json)", s)
	}
}

// Write renders r to w in format f.
func Write(w io.Writer, r *isodata.Result, f Format) error {
	switch f {
	case FormatSummary:
		return WriteSummary(w, r)
	case FormatClusters:
		return WriteClusters(w, r)
	case FormatJSON:
		return WriteJSON(w, r, codec.Default)
	default:
		return fmt.Errorf("report: unknown format %q", f)
	}
}

// WriteSummary writes the human-readable overview.
func WriteSummary(w io.Writer, r *isodata.Result) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Original Data Number : %d\n", r.Points)
	fmt.Fprintf(bw, "Cluster Number : %d\n", r.Len())
	for i, c := range r.Clusters {
		fmt.Fprintf(bw, "Number %d : %d\n", i+1, c.Size())
		fmt.Fprintf(bw, "cluster center : %s\n", dataset.FormatRow(c.Center, ','))
	}
	return bw.Flush()
}

// WriteClusters writes every cluster followed by its member rows in the
// dataset text format.
func WriteClusters(w io.Writer, r *isodata.Result) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", r.Len())
	for i, c := range r.Clusters {
		fmt.Fprintf(bw, "%d %d\n", i+1, c.Size())
		for _, row := range r.Vectors(i) {
			bw.WriteString(dataset.FormatRow(row, ','))
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}

// WriteJSON writes r as an indented JSON document encoded with c.
func WriteJSON(w io.Writer, r *isodata.Result, c codec.Codec) error {
	b, err := codec.MarshalIndent(c, r, "  ")
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
