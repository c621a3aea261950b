// Package logtail follows the game's chat log as it grows and rotates.
//
// # Overview
//
// The game client writes one log file per session into a directory and
// starts a new file on every login. battlewatch is told a glob pattern
// (for example "F:/Windower/logs/*.log") and always follows the newest file
// that matches it.
//
// The package provides two capabilities:
//
//  1. Source: incremental, rotation-aware tailing used by the monitor
//  2. Read: the last N lines of a file, used by the replay command
//
// # Source
//
// Each call to Source.Poll does the following:
//
//	1. Evaluate the glob pattern (fresh every time, so logs that appear
//	   after startup are picked up)
//	2. Pick the match with the newest modification time
//	3. If it differs from the file being tailed:
//	   - close the old handle
//	   - open the new file and seek to its end
//	   - report Batch.Rotated
//	4. Otherwise, check whether the tailed path was replaced or truncated
//	   and, if so, reopen it from offset 0 and report Batch.Rotated
//	5. Read everything appended since the last poll and split it into lines
//
// History written before a file was selected is never replayed. A file that
// is replaced in place, or truncated below the read offset, is read from the
// start because every byte in it is new.
//
// # Partial Lines
//
// Writers flush whenever they like, so a poll can land in the middle of a
// line. The unterminated tail is held in the cursor and joined with the next
// read, so a line is emitted exactly once and never split. Lines longer than
// 1MB without a newline are emitted as-is to bound memory.
//
// # Decoding
//
// Bytes are decoded with golang.org/x/text's UTF-8 decoder, which replaces
// malformed sequences with U+FFFD. Decoding never fails and never drops a
// line.
//
// # Error Handling
//
//   - ErrNoLogFile: the pattern matched nothing. Retry after a back-off.
//   - *IOError: open, stat or read failed. The handle has already been
//     dropped; the next Poll rediscovers and reopens, which reports Rotated.
//   - A malformed pattern returns a wrapped filepath.ErrBadPattern.
//
// None of these are fatal. The caller keeps polling.
//
// # Concurrency
//
// A Source is owned by one goroutine. The monitor runs it on a dedicated I/O
// worker so that slow disks never delay state updates.
//
// # Read
//
// Read keeps a ring buffer of maxLines entries and scans the file once, so
// memory is O(maxLines) regardless of file size. It returns nil, nil for a
// file that does not exist.
//
//	lines, err := logtail.Read(path, 200)
//	if err != nil {
//		return err
//	}
package logtail
