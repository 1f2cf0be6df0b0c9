package command

import "strings"

// ParseResult holds the parsed command name and arguments from a chat line.
type ParseResult struct {
	// Command is the first word of the input without its slash, lowercased.
	Command string
	// Args are the remaining words after the command.
	Args []string
	// RawArgs is the raw text after the command.
	RawArgs string
}

// Parse splits a chat line into a command and arguments. A single leading
// slash is optional.
//
// Postcondition: Returns a ParseResult. If line is empty, Command is empty.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "/")
	if line == "" {
		return ParseResult{}
	}

	spaceIdx := strings.IndexByte(line, ' ')
	if spaceIdx < 0 {
		return ParseResult{Command: strings.ToLower(line)}
	}

	cmd := strings.ToLower(line[:spaceIdx])
	rest := strings.TrimSpace(line[spaceIdx+1:])

	var args []string
	if rest != "" {
		args = strings.Fields(rest)
	}

	return ParseResult{
		Command: cmd,
		Args:    args,
		RawArgs: rest,
	}
}

// IsCommand reports whether a chat line is a slash command.
func IsCommand(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "/")
}
