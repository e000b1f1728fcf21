// Package logx configures tempo's structured logging.
//
// This repo uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured
//   - Rate-limited derived loggers for noisy call sites (clock error sink)
package logx
