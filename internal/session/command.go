package session

import "strings"

// runtimeCommand is the remote invocation prefix for a deployed
// MicroPython artifact; brickrun -r routes the runtime's output to the
// diagnostic stream the executor polls.
const runtimeCommand = "brickrun -r -- pybricks-micropython"

// beepCommand is the audible connectivity check available on the
// remote shell.
const beepCommand = "beep"

// JoinCommand renders a command and its arguments as one shell line
// with each part single-quoted.
func JoinCommand(cmd string, args ...string) string {
	if len(args) == 0 {
		return ShellEscape(cmd)
	}

	var builder strings.Builder
	builder.WriteString(ShellEscape(cmd))
	for _, arg := range args {
		builder.WriteByte(' ')
		builder.WriteString(ShellEscape(arg))
	}

	return builder.String()
}

// ShellEscape single-quotes a value for the remote shell.
func ShellEscape(value string) string {
	if value == "" {
		return "''"
	}

	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}

// RunScriptCommand builds the remote invocation for a deployed script.
func RunScriptCommand(remotePath string) string {
	return runtimeCommand + " " + ShellEscape(remotePath)
}
