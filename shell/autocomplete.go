package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/samber/lo"
)

var commands = []string{"n", "s", "e", "w", "info", "save", "help", "exit", "bye"}

// ShellCompleter completes command names.
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// Do implements readline.AutoCompleter.
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])
	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '
	if len(fields) > 1 || (len(fields) == 1 && endsWithSpace) {
		// commands take no arguments
		return nil, 0
	}
	prefix := ""
	if len(fields) == 1 {
		prefix = strings.ToLower(fields[0])
	}
	matches := lo.FilterMap(commands, func(cmd string, _ int) ([]rune, bool) {
		if !strings.HasPrefix(cmd, prefix) {
			return nil, false
		}
		return []rune(cmd[len(prefix):]), true
	})
	return matches, len(prefix)
}
