package hierarchy

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const maxLineLength = 1024 * 1024

// ReadLines reads every line from r, stripping line terminators.
func ReadLines(r io.Reader) ([]string, error) {
	lines := []string{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// LoadFile reads path and builds a hierarchy from its lines.
func LoadFile(path string, opts ...Option) (*Hierarchy, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	lines, err := ReadLines(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return Build(lines, opts...)
}
