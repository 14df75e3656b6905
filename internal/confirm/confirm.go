// Package confirm abstracts the interactive yes/no decision points the
// change workflows depend on, so the workflows stay free of terminal I/O. A
// fully automated caller supplies Yes(); tests supply Scripted answers.
package confirm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Func answers one confirmation question.
type Func func(question string) (bool, error)

// Yes answers every question affirmatively.
func Yes() Func {
	return func(string) (bool, error) { return true, nil }
}

// No answers every question negatively.
func No() Func {
	return func(string) (bool, error) { return false, nil }
}

// Terminal prompts on w and reads the answer from r. Empty input defaults to
// yes; only an explicit N/n declines.
func Terminal(r io.Reader, w io.Writer) Func {
	reader := bufio.NewReader(r)
	return func(question string) (bool, error) {
		if _, err := fmt.Fprintf(w, "[INPUT] %s, Y/N [Y]? ", question); err != nil {
			return false, err
		}
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		answer := strings.ToUpper(strings.TrimSpace(line))
		return answer == "" || answer == "Y", nil
	}
}

// Scripted replays a fixed list of answers and errors when exhausted.
func Scripted(answers ...bool) Func {
	i := 0
	return func(question string) (bool, error) {
		if i >= len(answers) {
			return false, fmt.Errorf("no scripted answer for %q", question)
		}
		a := answers[i]
		i++
		return a, nil
	}
}
