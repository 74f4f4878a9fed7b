// Package wordlist reads the flat, newline-delimited files the scanner
// consumes: the pathlist, the target URL list and the user-agent file.
// Out of the core scan
// engine's scope per spec.md §1, kept here as plain file-reading glue.
package wordlist

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadLines reads path line by line, trimming trailing CR/LF and
// skipping blank lines. Used for the pathlist, --url-list and
// db/user-agents.txt.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wordlist: open %q: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("wordlist: read %q: %w", path, err)
	}
	return lines, nil
}
