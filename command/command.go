// Package command implements the sole wire representation outbound
// RESP commands have: a RESP array of bulk strings, one per argument.
package command

import (
	"bytes"
	"strconv"
	"strings"
)

// Command is an ordered list of binary-safe arguments.
type Command struct {
	Args [][]byte
}

// New builds a Command from string arguments, a convenience for the
// common case where every argument is plain text (e.g. "SENTINEL",
// "get-master-addr-by-name", name).
func New(args ...string) Command {
	argv := make([][]byte, len(args))
	for i, a := range args {
		argv[i] = []byte(a)
	}
	return Command{Args: argv}
}

// NewFromBytes builds a Command from already-binary arguments.
func NewFromBytes(argv [][]byte) Command {
	return Command{Args: argv}
}

// Serialize renders the command as the RESP wire form:
//
//	*<n>\r\n$<|a1|>\r\n<a1>\r\n...$<|an|>\r\n<an>\r\n
//
// Argument payloads are binary-safe; there is no quoting or escaping.
func (c Command) Serialize() []byte {
	var buf bytes.Buffer
	buf.WriteByte('*')
	buf.WriteString(strconv.Itoa(len(c.Args)))
	buf.WriteString("\r\n")
	for _, arg := range c.Args {
		buf.WriteByte('$')
		buf.WriteString(strconv.Itoa(len(arg)))
		buf.WriteString("\r\n")
		buf.Write(arg)
		buf.WriteString("\r\n")
	}
	return buf.Bytes()
}

// String renders a best-effort, space-joined diagnostic form for logging.
// It is never used for the wire encoding.
func (c Command) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = string(a)
	}
	return strings.Join(parts, " ")
}
