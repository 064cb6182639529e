package debug

import (
	"fmt"
	"math"
	"strconv"
)

var cmdWatch = Command{
	Name:    "watch",
	Summary: "Stop execution when a cell is changed to a value",
	Description: "A watch triggers right after an increment or decrement leaves the cell at {index} holding " +
		"{value}. The index may lie beyond the current end of the tape.",
	Exec: addWatchExec,
	Args: []CmdArg{
		{
			Name:     "index",
			Required: true,
		},
		{
			Name:     "value",
			Required: true,
		},
	},
	Subcommands: []Command{
		{
			Name:    "list",
			Aliases: []string{"ls"},
			Summary: "List all watches",
			Exec:    listWatchesExec,
		},
		{
			Name:    "del",
			Aliases: []string{"rm"},
			Summary: "Delete a watch",
			Exec:    delWatchExec,
			Args: []CmdArg{
				{
					Name:     "index",
					Required: true,
				},
				{
					Name:     "value",
					Required: true,
				},
			},
		},
	},
}

// parseWatch validates the {index} {value} arguments, the usage is shown if one is missing
func (s *Session) parseWatch(args []string, usage []string) (int, byte, bool) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage:")
		helpExec(s, usage)
		return 0, 0, false
	}

	index, indexErr := strconv.Atoi(args[0])
	value, valueErr := strconv.Atoi(args[1])
	if indexErr != nil || valueErr != nil || index < 0 || value < 0 || value > math.MaxUint8 {
		s.printRed("index and value must be valid integers, index >= 0 and value between 0 and 255\n")
		return 0, 0, false
	}

	return index, byte(value), true
}

func addWatchExec(s *Session, args []string) {
	if !s.requireVM() {
		return
	}

	index, value, ok := s.parseWatch(args, []string{"watch"})
	if !ok {
		return
	}

	s.vm.AddWatch(index, value)
	fmt.Fprintf(s.out, "Watching cell %d for value %d\n", index, value)
}

func listWatchesExec(s *Session, args []string) {
	if !s.requireVM() {
		return
	}

	watches := s.vm.Watches()
	if len(watches) == 0 {
		fmt.Fprintln(s.out, "No watches set")
		return
	}

	for _, w := range watches {
		fmt.Fprintf(s.out, "%s == %s\n", blue(fmt.Sprintf("cell %d", w.Index)), yellow(strconv.Itoa(int(w.Value))))
	}
}

func delWatchExec(s *Session, args []string) {
	if !s.requireVM() {
		return
	}

	index, value, ok := s.parseWatch(args, []string{"watch", "del"})
	if !ok {
		return
	}

	if !s.vm.RemoveWatch(index, value) {
		s.printRed("No watch on cell %d for value %d, use 'watch list' to see valid options\n", index, value)
		return
	}

	fmt.Fprintf(s.out, "Watch on cell %d for value %d deleted\n", index, value)
}
