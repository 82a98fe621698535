// Package log provides leveled structured logging on top of [log/slog].
//
// A [Logger] is configured once, with functional options, when it is made:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("Kitchen"))
//
// Every logging method takes typed [slog.Attr] values:
//
//	logger.Info("parsed", slog.String("file", path), slog.Int("blocks", n))
//
// The zero Logger discards everything, so libraries can hold one
// unconditionally and let callers opt in to output.
//
// # Levels
//
// [LevelTrace] sits below [LevelDebug] for per-statement parser detail.
// The remaining levels match slog.
//
// # Formats
//
// [FormatText] writes one line per record, colorized when pretty printing
// is enabled and the output is a terminal. [FormatJSON] writes one JSON
// object per record.
//
// # Package-level logger
//
// The functions [Info], [Warn], and so on log through a process-wide logger
// that writes to standard error; [Config] and [SetDefault] replace it.
package log
