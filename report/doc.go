// Package report renders clustering results and provides isodata.Sink
// implementations that write them to streams or blob stores.
//
// Three formats are available:
//
//   - summary: human-readable overview (point count, cluster count, per
//     cluster size and center)
//   - clusters: the cluster count on the first line, then per cluster a
//     "<number> <size>" line followed by its member rows
//   - json: the full Result, including sigma and member indices
package report
