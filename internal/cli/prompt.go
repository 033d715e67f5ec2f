package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// promptProxyPassword asks for the proxy password without echoing it.
// Falls back to a plain line read when stdin is not a terminal.
func promptProxyPassword(user string) (string, error) {
	fmt.Fprintf(os.Stderr, "Proxy password for %s: ", user)
	defer fmt.Fprintln(os.Stderr)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		password, err := term.ReadPassword(fd)
		if err != nil {
			return "", fmt.Errorf("failed to read proxy password: %w", err)
		}
		return string(password), nil
	}
	return readLine(os.Stdin)
}

// readLine reads one line from r without its line terminator.
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
