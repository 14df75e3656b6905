package resolve

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoURIElement reports a well-formed URI table without any URI element.
var ErrNoURIElement = errors.New("uri table has no URI element")

// ExtractFirstURI parses a service URI table attribute value as markup and
// returns the text content of the first URI element. An element present with
// empty content yields an empty URI; malformed markup is an error.
func ExtractFirstURI(value string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(value))
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", ErrNoURIElement
			}
			return "", fmt.Errorf("malformed uri table: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "URI" {
			continue
		}
		// The URI element may legitimately be empty.
		var text strings.Builder
		depth = 1
		for depth > 0 {
			inner, err := dec.Token()
			if err != nil {
				return "", fmt.Errorf("malformed uri table: %w", err)
			}
			switch t := inner.(type) {
			case xml.StartElement:
				depth++
			case xml.EndElement:
				depth--
			case xml.CharData:
				if depth == 1 {
					text.Write(t)
				}
			}
		}
		return strings.TrimSpace(text.String()), nil
	}
}
