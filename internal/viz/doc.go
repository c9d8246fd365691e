// Package viz renders trajectories and error reports for the terminal.
//
//   - [ChartSink]: multi-series asciigraph chart of a trajectory
//   - [ErrorChart]: per-sample error from a comparison report
//   - [Summary], [CompareTable], [SweepTable]: lipgloss-styled tables
//
// Rendering never feeds back into integration: every function takes a
// finished trajectory or report and returns text.
package viz
