package watchlist

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EntryError describes a watchlist line that was skipped.
type EntryError struct {
	Line   int
	Text   string
	Reason string
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// Result is the outcome of parsing a watchlist source.
type Result struct {
	List    *Watchlist
	Skipped []*EntryError
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse reads the plain-text watchlist format: one "move, level" per line.
// The split happens on the last comma so move names may contain commas.
// Quotes and colons are stripped from the move name. Lines without a comma,
// blank lines and '#' comments are ignored silently; lines with a bad level
// are reported in Result.Skipped.
func Parse(r io.Reader) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("read watchlist: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	var (
		entries []Entry
		skipped []*EntryError
	)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 4*1024), 64*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || !strings.Contains(line, ",") {
			continue
		}
		idx := strings.LastIndex(line, ",")
		move := cleanMove(line[:idx])
		if move == "" {
			skipped = append(skipped, &EntryError{Line: lineNo, Text: line, Reason: "empty move name"})
			continue
		}
		level, err := parseLevel(line[idx+1:])
		if err != nil {
			skipped = append(skipped, &EntryError{Line: lineNo, Text: line, Reason: err.Error()})
			continue
		}
		entries = append(entries, Entry{Move: move, Level: level})
	}
	if err := scanner.Err(); err != nil {
		return Result{}, fmt.Errorf("scan watchlist: %w", err)
	}
	return Result{List: New(entries...), Skipped: skipped}, nil
}

// ParseYAML reads a YAML mapping of move name to level. Document order is
// kept so the classifier tie-break matches the text format.
func ParseYAML(r io.Reader) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("read watchlist: %w", err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Result{}, fmt.Errorf("parse watchlist yaml: %w", err)
	}
	if len(doc.Content) == 0 {
		return Result{List: New()}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return Result{}, fmt.Errorf("parse watchlist yaml: top level must be a mapping")
	}

	var (
		entries []Entry
		skipped []*EntryError
	)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		text := key.Value + ": " + val.Value
		move := cleanMove(key.Value)
		if move == "" {
			skipped = append(skipped, &EntryError{Line: key.Line, Text: text, Reason: "empty move name"})
			continue
		}
		if val.Kind != yaml.ScalarNode {
			skipped = append(skipped, &EntryError{Line: key.Line, Text: key.Value, Reason: "level must be a number"})
			continue
		}
		level, err := parseLevel(val.Value)
		if err != nil {
			skipped = append(skipped, &EntryError{Line: key.Line, Text: text, Reason: err.Error()})
			continue
		}
		entries = append(entries, Entry{Move: move, Level: level})
	}
	return Result{List: New(entries...), Skipped: skipped}, nil
}

// Load parses the watchlist at path, choosing the YAML parser for .yaml and
// .yml files and the text parser otherwise.
func Load(path string) (Result, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{}, fmt.Errorf("watchlist not found: %w", err)
		}
		return Result{}, fmt.Errorf("open watchlist: %w", err)
	}
	defer func() { _ = file.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(file)
	default:
		return Parse(file)
	}
}

func cleanMove(raw string) string {
	move := strings.TrimSpace(raw)
	move = strings.NewReplacer(`"`, "", "'", "", ":", "").Replace(move)
	return strings.TrimSpace(move)
}

func parseLevel(raw string) (Level, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid level")
	}
	level := Level(n)
	if !level.Valid() {
		return 0, fmt.Errorf("level %d out of range", n)
	}
	return level, nil
}
