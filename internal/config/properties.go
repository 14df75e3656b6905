package config

import (
	"bufio"
	"io"
	"strings"
)

// parseProperties reads java-style key=value properties. Lines starting with
// '#' or '!' are comments; ':' is accepted as separator; keys and values are
// trimmed. Escape sequences and line continuations are not supported, the
// connection files never use them.
func parseProperties(r io.Reader) (map[string]string, error) {
	props := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		sep := strings.IndexAny(line, "=:")
		if sep < 0 {
			continue
		}
		key := strings.TrimSpace(line[:sep])
		value := strings.TrimSpace(line[sep+1:])
		if key == "" {
			continue
		}
		props[key] = value
	}
	return props, scanner.Err()
}
