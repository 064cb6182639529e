package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	prompt "github.com/c-bata/go-prompt"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mgutz/ansi"
)

type CmdFn func(s *Session, args []string)
type CompletionFn func(s *Session, args []string) []prompt.Suggest

type CmdArg struct {
	Name     string
	Required bool
}

type Command struct {
	Name             string
	Summary          string
	Description      string
	Aliases          []string
	Exec             CmdFn
	Args             []CmdArg
	Subcommands      []Command
	CustomCompletion CompletionFn
}

var (
	rootCommands []Command

	red    = ansi.ColorFunc("red")
	blue   = ansi.ColorFunc("blue")
	green  = ansi.ColorFunc("green")
	yellow = ansi.ColorFunc("yellow")

	blueStrike  = ansi.ColorFunc("blue+s")
	whiteStrike = ansi.ColorFunc("white+s")

	// Background highlights for the current instruction and the current cell
	instHighlight = ansi.ColorFunc("black:cyan")
	cellHighlight = ansi.ColorFunc("white:red")
)

func init() {
	rootCommands = []Command{
		helpCmd,
		{
			Name:    "exit",
			Aliases: []string{"q", "quit"},
			Summary: "Exits the debugger",
			Exec: func(s *Session, args []string) {
				s.quit = true
			},
		},
		{
			Name:    "clear",
			Summary: "Clear the screen",
			Exec: func(s *Session, args []string) {
				fmt.Fprint(s.out, "\033[2J")
			},
		},
		cmdLoad,
		cmdReset,
		cmdView,
		cmdRegisters,
		cmdStep,
		cmdStepLine,
		cmdRun,
		cmdContinue,
		cmdWatch,
		cmdBreakpoint,
		cmdListInstructions,
		cmdList,
		cmdTape,
		cmdOutput,
		cmdDump,
		cmdMacro,
	}
}

// fmt.Printf but in red
func (s *Session) printRed(format string, args ...interface{}) {
	if len(args) == 0 {
		fmt.Fprint(s.out, red(format))
		return
	}

	fmt.Fprint(s.out, red(fmt.Sprintf(format, args...)))
}

// splitArgs splits by space, but keeps spaces within quotes("")
func splitArgs(in string) []string {
	quoted := false
	args := strings.FieldsFunc(in, func(r rune) bool {
		if r == '"' {
			quoted = !quoted
		}
		return !quoted && r == ' '
	})
	for i, arg := range args {
		args[i] = strings.Trim(arg, "\"")
	}

	return args
}

// Execute parses and executes a single line of user input
func (s *Session) Execute(in string) {
	in = strings.TrimSpace(in)

	args := splitArgs(in)

	// If the input string starts with a comment, don't actually execute
	if strings.HasPrefix(in, "#") || strings.HasPrefix(in, "//") {
		// But if we are recording a macro, add it to the list of commands
		if s.macros.rec {
			s.macros.recCommands = append(s.macros.recCommands, in)
		}
		return
	}

	// Show help if no args were given and non have been executed before
	if len(args) == 0 {
		if len(s.lastArgs) == 0 {
			helpCmd.Exec(s, nil)
			return
		}

		// Repeat the last command, this is really helpful if you have to execute it a bunch of times
		args = s.lastArgs
	}

	s.lastArgs = args
	s.logger.Debug("execute command", "args", args)

	var cmd Command
	cmdList := rootCommands
	// Copy slice header, which we intend to modify
	modArgs := args
	for {
		var found bool
		cmd, found = commandMap(cmdList)[modArgs[0]]
		if !found {
			s.printRed("'%s' is not a valid command\n\n", strings.Join(args, " "))
			fmt.Fprintln(s.out, "Usage:")
			helpExec(s, args)
			return
		}

		modArgs = modArgs[1:]

		// If this command has sub commands and the next argument names one of them, continue resolving.
		// Commands with an Exec and sub commands get the arguments if they don't name a sub command.
		if len(cmd.Subcommands) > 0 && len(modArgs) > 0 {
			if _, isSub := commandMap(cmd.Subcommands)[modArgs[0]]; isSub || cmd.Exec == nil {
				cmdList = cmd.Subcommands
				continue
			}
		}

		// If a command has no Exec, we are not meant to execute it, rater a subcommand, so show help
		if cmd.Exec == nil {
			s.printRed("'%s' is missing a {sub-command}\n\n", strings.Join(args, " "))
			fmt.Fprintln(s.out, "Usage:")
			helpExec(s, args)
			return
		}

		// If there are no more arguments or no more sub commands, execute the current command and exit
		cmd.Exec(s, modArgs)

		// If macro recording is enabled, record the full command.
		if s.macros.rec {
			// Don't record the `macro start` command in the actual macro
			if !(len(args) >= 2 && args[0] == "macro" && args[1] == "start") {
				s.macros.recCommands = append(s.macros.recCommands, in)
			}
		}

		return
	}
}

func (s *Session) complete(in prompt.Document) []prompt.Suggest {
	inText := strings.TrimSpace(in.Text)

	if inText == "" {
		return nil
	}

	args := splitArgs(inText)

	var cmd Command
	cmdList := rootCommands
	// Copy slice header, which we intend to modify
	modArgs := args
	for {
		if len(modArgs) == 0 {
			break
		}

		var found bool
		cmd, found = commandMap(cmdList)[modArgs[0]]
		if !found {
			break
		}

		// If this command has sub commands and we also have more arguments, continue resolving
		if len(cmd.Subcommands) > 0 && len(modArgs) > 0 {
			modArgs = modArgs[1:]
			cmdList = cmd.Subcommands
			continue
		}

		if cmd.CustomCompletion != nil {
			return cmd.CustomCompletion(s, modArgs[1:])
		}

		break
	}

	cmds := make([]string, 0, len(cmdList))
	for _, cmd := range cmdList {
		cmds = append(cmds, cmd.Name)
		cmds = append(cmds, cmd.Aliases...)
	}

	search := ""
	if len(modArgs) > 0 {
		search = modArgs[0]
	}

	var suggestions []prompt.Suggest
	cmdMap := commandMap(cmdList)

	ranks := fuzzy.RankFind(search, cmds)
	sort.Sort(ranks)

	for _, rank := range ranks {
		cmd, found := cmdMap[rank.Target]
		if !found {
			continue
		}

		suggestions = append(suggestions, prompt.Suggest{
			Text:        rank.Target,
			Description: cmd.Summary,
		})
	}

	return suggestions
}

func fileCompletion(s *Session, args []string) []prompt.Suggest {
	path := "."
	if len(args) > 0 {
		path = args[len(args)-1]
	}

	pathDir := path
	// If it is a directory, show the contents of the directory
	if stat, err := os.Stat(path); err != nil || stat.IsDir() {
		pathDir = filepath.Dir(path)
	}

	dir, err := os.ReadDir(pathDir)
	if err != nil {
		return nil
	}

	fileNames := make([]string, len(dir))
	for i, file := range dir {
		if file.IsDir() {
			fileNames[i] = file.Name() + "/"
		} else {
			fileNames[i] = file.Name()
		}
	}

	pathDir, file := filepath.Split(path)

	ranks := fuzzy.RankFind(file, fileNames)
	sort.Sort(ranks)

	var suggestion []prompt.Suggest
	for _, rank := range ranks {
		var text string
		if pathDir == "" {
			text = rank.Target
		} else {
			text = fmt.Sprintf("%s%s", pathDir, rank.Target)
		}
		suggestion = append(suggestion, prompt.Suggest{
			Text: text,
		})
	}

	return suggestion
}
