package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"golang.org/x/text/encoding/unicode"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. Malformed UTF-8 is replaced.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	dec := unicode.UTF8.NewDecoder()
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxPartial)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, decodeLine(dec, scanner.Bytes()))
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = decodeLine(dec, scanner.Bytes())
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Latest returns the newest regular file matching pattern, or ErrNoLogFile.
func Latest(pattern string) (string, error) {
	c, err := NewSource(pattern).discover()
	if err != nil {
		return "", err
	}
	return c.path, nil
}
