package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// promptForVariable asks for the value of a variable on in
func promptForVariable(in *bufio.Reader, out io.Writer, name string) (string, error) {
	fmt.Fprintf(out, "Enter value for '%s': ", name)
	return readLine(in)
}

// confirm asks a yes/no question; anything but y or yes is a no
func confirm(in *bufio.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	answer, err := readLine(in)
	if err != nil && err != io.EOF {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// isInteractive checks if stdin is a terminal (not piped)
func isInteractive() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
