package logtail

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// ErrNoLogFile is returned by Poll when the pattern matches no regular file.
var ErrNoLogFile = errors.New("no log file matches pattern")

const (
	readChunk = 32 * 1024
	// maxReadPerPoll bounds how much one Poll consumes so a burst cannot
	// starve the caller; the rest is read on the next poll.
	maxReadPerPoll = 4 * 1024 * 1024
	// maxPartial bounds an unterminated line. Longer data is emitted as a line.
	maxPartial = 1024 * 1024
	// headSize is how much of the file start is kept to recognise a file
	// that was truncated and rewritten in place.
	headSize = 64
)

// IOError reports an open, stat or read failure on a log file. The Source
// has already dropped the file; the next Poll rediscovers it.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s log %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Batch is the result of one Poll.
type Batch struct {
	// Path is the file being tailed after this poll.
	Path string
	// Rotated is set when the poll switched to a different file, or found the
	// tailed file replaced or truncated.
	Rotated bool
	// Lines are the complete lines appended since the previous poll, in file
	// order, without line terminators.
	Lines []string
}

// logFile is the part of *os.File a Source uses.
type logFile interface {
	io.Reader
	io.ReaderAt
	io.Seeker
	io.Closer
	Stat() (os.FileInfo, error)
}

var openFile = func(name string) (logFile, error) { return os.Open(name) }

type cursor struct {
	path    string
	file    logFile
	offset  int64
	partial []byte
	// modTime and size are from the last stat of the held file.
	modTime time.Time
	size    int64
	// head is up to headSize bytes from the start of the file.
	head []byte
}

// Source tails the newest file matching a glob pattern. It is not safe for
// concurrent use; a single worker goroutine owns it.
type Source struct {
	pattern string
	cur     *cursor
	decoder *encoding.Decoder
}

// NewSource returns a Source for pattern. Nothing is opened until the first
// Poll.
func NewSource(pattern string) *Source {
	return &Source{
		pattern: pattern,
		decoder: unicode.UTF8.NewDecoder(),
	}
}

// Pattern returns the glob pattern.
func (s *Source) Pattern() string { return s.pattern }

// Path returns the file currently tailed, or "" when none is open.
func (s *Source) Path() string {
	if s.cur == nil {
		return ""
	}
	return s.cur.path
}

// Offset returns the read position in the tailed file.
func (s *Source) Offset() int64 {
	if s.cur == nil {
		return 0
	}
	return s.cur.offset
}

// Close releases the open file, if any.
func (s *Source) Close() error {
	if s.cur == nil {
		return nil
	}
	err := s.cur.file.Close()
	s.cur = nil
	return err
}

// Poll discovers the newest matching file and returns lines appended since
// the previous call. A newly selected file is positioned at its end so
// history written before it was selected is never replayed. When an
// *IOError is returned the batch still carries any lines read before the
// failure.
func (s *Source) Poll() (Batch, error) {
	latest, err := s.discover()
	if err != nil {
		return Batch{}, err
	}

	var batch Batch
	if s.cur == nil || s.cur.path != latest.path {
		if err := s.open(latest.path, true); err != nil {
			return Batch{}, err
		}
		batch.Rotated = true
	} else {
		path := s.cur.path
		reset, err := s.checkReplaced()
		if err != nil {
			_ = s.Close()
			var ioErr *IOError
			if errors.As(err, &ioErr) {
				return Batch{}, err
			}
			return Batch{}, &IOError{Op: "stat", Path: path, Err: err}
		}
		batch.Rotated = reset
	}
	batch.Path = s.cur.path

	lines, err := s.readLines()
	if err != nil {
		_ = s.Close()
		return Batch{Path: batch.Path, Rotated: batch.Rotated, Lines: lines}, &IOError{Op: "read", Path: batch.Path, Err: err}
	}
	batch.Lines = lines
	return batch, nil
}

type candidate struct {
	path    string
	modTime time.Time
}

func (s *Source) discover() (candidate, error) {
	matches, err := filepath.Glob(s.pattern)
	if err != nil {
		return candidate{}, fmt.Errorf("glob %q: %w", s.pattern, err)
	}
	var (
		best  candidate
		found bool
	)
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if !found || info.ModTime().After(best.modTime) {
			best = candidate{path: path, modTime: info.ModTime()}
			found = true
		}
	}
	if !found {
		return candidate{}, ErrNoLogFile
	}
	return best, nil
}

func (s *Source) open(path string, atEnd bool) error {
	if s.cur != nil {
		_ = s.Close()
	}
	file, err := openFile(path)
	if err != nil {
		return &IOError{Op: "open", Path: path, Err: err}
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return &IOError{Op: "stat", Path: path, Err: err}
	}
	head, err := readHead(file)
	if err != nil {
		_ = file.Close()
		return &IOError{Op: "read", Path: path, Err: err}
	}
	var offset int64
	if atEnd {
		offset, err = file.Seek(0, io.SeekEnd)
		if err != nil {
			_ = file.Close()
			return &IOError{Op: "seek", Path: path, Err: err}
		}
	}
	s.cur = &cursor{
		path:    path,
		file:    file,
		offset:  offset,
		modTime: info.ModTime(),
		size:    info.Size(),
		head:    head,
	}
	return nil
}

func readHead(file io.ReaderAt) ([]byte, error) {
	buf := make([]byte, headSize)
	n, err := file.ReadAt(buf, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}

// checkReplaced reopens the tailed path from the start when the file on disk
// is no longer the one held open, or was truncated. All of its content is new
// in both cases. Truncation is recognised by the size falling below the read
// offset, by a changed file head, or by a newer mtime without growth.
func (s *Source) checkReplaced() (bool, error) {
	onDisk, err := os.Stat(s.cur.path)
	if err != nil {
		return false, err
	}
	held, err := s.cur.file.Stat()
	if err != nil {
		return false, err
	}

	if !os.SameFile(onDisk, held) {
		if err := s.open(s.cur.path, false); err != nil {
			return false, err
		}
		return true, nil
	}

	head, err := readHead(s.cur.file)
	if err != nil {
		return false, err
	}
	rewritten := held.Size() < s.cur.offset ||
		!bytes.HasPrefix(head, s.cur.head) ||
		(held.ModTime().After(s.cur.modTime) && held.Size() > 0 && held.Size() <= s.cur.size)

	s.cur.modTime = held.ModTime()
	s.cur.size = held.Size()
	s.cur.head = head
	if !rewritten {
		return false, nil
	}
	if _, err := s.cur.file.Seek(0, io.SeekStart); err != nil {
		return false, err
	}
	s.cur.offset = 0
	s.cur.partial = nil
	return true, nil
}

func (s *Source) readLines() ([]string, error) {
	var (
		data    []byte
		readErr error
	)
	buf := make([]byte, readChunk)
	for len(data) < maxReadPerPoll {
		n, err := s.cur.file.Read(buf)
		if n > 0 {
			data = append(data, buf[:n]...)
			s.cur.offset += int64(n)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				readErr = err
			}
			break
		}
		if n == 0 {
			break
		}
	}
	if len(data) == 0 {
		return nil, readErr
	}

	if len(s.cur.partial) > 0 {
		data = append(s.cur.partial, data...)
		s.cur.partial = nil
	}

	var lines []string
	for {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			break
		}
		lines = append(lines, decodeLine(s.decoder, data[:idx]))
		data = data[idx+1:]
	}
	if len(data) > 0 {
		if len(data) >= maxPartial {
			lines = append(lines, decodeLine(s.decoder, data))
		} else {
			s.cur.partial = append([]byte(nil), data...)
		}
	}
	return lines, readErr
}

// decodeLine strips a trailing CR and replaces malformed UTF-8.
func decodeLine(dec *encoding.Decoder, raw []byte) string {
	raw = bytes.TrimSuffix(raw, []byte{'\r'})
	out, err := dec.Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), "\uFFFD")
	}
	return string(out)
}
