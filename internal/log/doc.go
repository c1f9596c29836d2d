// Package log holds the slog plumbing shared by the command line tools: a
// handler that masks credentials before records reach their sink, and a
// size-rotated log file.
package log
