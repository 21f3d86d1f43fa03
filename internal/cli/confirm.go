package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
)

// confirm asks a yes/no question. Terminals get a huh form; piped input is
// read one line at a time and anything but "y" or "yes" declines.
func confirm(app *App, out io.Writer, question string) (bool, error) {
	if app.interactive() {
		var ok bool
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(question).
					Affirmative("Apply").
					Negative("Cancel").
					Value(&ok),
			),
		).WithTheme(famcoordHuhTheme()).WithShowHelp(false).Run()
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return ok, err
	}

	fmt.Fprintf(out, "%s [y/N]: ", question)
	line, err := readLine(app.input())
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes", nil
}

// readLine reads up to LF or CR without buffering past the line, so later
// prompts on the same reader still see their input.
func readLine(in io.Reader) (string, error) {
	var buf []byte
	var one [1]byte
	for {
		n, err := in.Read(one[:])
		if n > 0 {
			if one[0] == '\n' || one[0] == '\r' {
				return string(buf), nil
			}
			buf = append(buf, one[0])
		}
		if err != nil {
			if errors.Is(err, io.EOF) && len(buf) > 0 {
				return string(buf), nil
			}
			return string(buf), err
		}
	}
}
