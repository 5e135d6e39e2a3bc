// Package dataset provides data sources for the isodata engine.
//
// The text format holds one sample per line with features separated by a
// delimiter (default ','):
//
//	0.5,1.25,3
//	4,5,6
//
// Blank lines are skipped, lines starting with '#' are comments, and an
// optional header line can be skipped with WithHeader. Files and blobs
// ending in .zst or .lz4 are decompressed transparently.
//
//	src := dataset.FromFile("points.txt.zst")
//	eng, err := isodata.New(src, isodata.DefaultParams())
package dataset
