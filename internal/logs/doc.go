// Package logs provides bounded log file tailing for the CLI.
//
// Tail reads the last N lines of the sync log without loading the whole file;
// Follow polls from a byte offset and emits new lines until the context ends,
// powering `cardsync logs --follow`.
package logs
