package debug

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

var cmdList = Command{
	Name:    "list",
	Aliases: []string{"ls"},
	Summary: "Lists the lines of the source code",
	Exec:    listLinesExec,
}

func listLinesExec(s *Session, args []string) {
	if !s.requireVM() {
		return
	}

	inst, ok := s.vm.Current()
	if !ok || inst.Line == 0 {
		fmt.Fprintln(s.out, yellow("The program has ended, no current source line"))
		return
	}

	lines := strings.Split(s.source, "\n")

	start := inst.Line - s.cfg.Window
	if start < 1 {
		start = 1
	}
	end := inst.Line + s.cfg.Window
	if end > len(lines) {
		end = len(lines)
	}

	indexPadSize := len(strconv.Itoa(end))
	for i := start; i <= end; i++ {
		line := strings.TrimSuffix(lines[i-1], "\r")

		if i == inst.Line {
			fmt.Fprint(s.out, yellow(" => "))
			line = highlightColumn(line, inst.Column)
		} else {
			fmt.Fprint(s.out, "    ")
		}

		fmt.Fprint(s.out, blue(fmt.Sprintf("%*d ", indexPadSize, i)))
		fmt.Fprintln(s.out, line)
	}
}

// highlightColumn highlights the rune at column, columns are counted in runes
func highlightColumn(line string, column int) string {
	if column < 0 || column >= utf8.RuneCountInString(line) {
		return line
	}

	runes := []rune(line)
	return string(runes[:column]) + instHighlight(string(runes[column])) + string(runes[column+1:])
}
