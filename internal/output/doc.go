// Package output writes generated artifacts and describes what was written.
//
// The package is organized around four concerns:
//
//   - Writers (writer.go): [FileWriter] streams an artifact through a
//     temporary file and renames it into place, so a failed write leaves
//     neither a partial file nor a stale one. Every write yields a BLAKE3
//     digest.
//
//   - Reports (report.go): a YAML listing of every artifact with size and
//     digest.
//
//   - Drift (diff.go): unified diffs between artifacts on disk and freshly
//     generated ones, with the copyright year masked.
//
//   - Summary (summary.go): a per-target table for the terminal.
package output
