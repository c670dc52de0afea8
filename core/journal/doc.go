// Package journal records every optimization run so schedules can be
// audited and analysed later. Records are stored as JSON lines, optionally
// rotated with lumberjack, or in a SQLite table.
package journal
