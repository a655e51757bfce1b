// Package logging provides a tiny abstraction over slog so downstream code
// depends only on a minimal Logger interface while callers plug in any
// structured logger. The NoOpLogger default keeps the runtime silent unless
// a logger is configured.
package logging
