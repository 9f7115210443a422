package atmshell

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/ssh/terminal"
)

// PinReader reads a PIN without exposing it on screen.
type PinReader interface {
	ReadPin(prompt string) (string, error)
}

// TerminalPinReader reads PINs from a terminal with echo disabled.
type TerminalPinReader struct {
	fd  int
	out io.Writer
}

// NewTerminalPinReader returns a PinReader for f, or false if f is not a terminal.
func NewTerminalPinReader(f *os.File, out io.Writer) (*TerminalPinReader, bool) {
	fd := int(f.Fd())
	if !terminal.IsTerminal(fd) {
		return nil, false
	}

	return &TerminalPinReader{fd: fd, out: out}, true
}

// ReadPin prints prompt and reads one line with echo off.
func (r *TerminalPinReader) ReadPin(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)

	b, err := terminal.ReadPassword(r.fd)

	fmt.Fprintln(r.out)

	if err != nil {
		return "", err
	}

	return string(b), nil
}
