package debug

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	prompt "github.com/c-bata/go-prompt"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

var cmdMacro = Command{
	Name:    "macro",
	Aliases: []string{"mc"},
	Summary: "Macros allow you to execute a series of commands",
	Description: "Macros combine multiple commands so they can be repeated by pressing <enter>, or replay the setup " +
		"of a session (loading a program, setting watches and breakpoints) from a file.",
	Subcommands: []Command{
		{
			Name:    "list",
			Aliases: []string{"ls"},
			Summary: "List all loaded macros",
			Exec:    listMacroExec,
		},
		{
			Name:    "show",
			Summary: "Shows the commands in a macro",
			Exec:    showMacroExec,
			Args: []CmdArg{{
				Name:     "name",
				Required: true,
			}},
			CustomCompletion: macroCompletion,
		},
		{
			Name:    "start",
			Summary: "Start recording a macro",
			Exec:    startRecordingMacroExec,
			Args: []CmdArg{{
				Name:     "name",
				Required: true,
			}},
		},
		{
			Name:    "stop",
			Summary: "Stop recording a macro",
			Exec:    stopRecordingMacroExec,
		},
		{
			Name:    "save",
			Summary: "Save a macro to a file",
			Exec:    saveMacroExec,
			Args: []CmdArg{
				{
					Name:     "macro name",
					Required: true,
				},
				{
					Name:     "file path",
					Required: false,
				},
			},
			CustomCompletion: func(s *Session, args []string) []prompt.Suggest {
				if len(args) <= 1 {
					return macroCompletion(s, args)
				}
				return fileCompletion(s, args[1:])
			},
		},
		{
			Name:    "load",
			Summary: "Load macro(s) from a file",
			Exec:    loadMacroExec,
			Args: []CmdArg{{
				Name:     "file path",
				Required: true,
			}},
			CustomCompletion: fileCompletion,
		},
		{
			Name:    "un-load",
			Summary: "Unloads a macro, permanently deleting it if not saved",
			Exec:    unloadMacroExec,
			Args: []CmdArg{{
				Name:     "name",
				Required: true,
			}},
			CustomCompletion: macroCompletion,
		},
		{
			Name:    "exec",
			Summary: "Execute a macro",
			Exec:    execMacroExec,
			Args: []CmdArg{{
				Name:     "name",
				Required: true,
			}},
			CustomCompletion: macroCompletion,
		},
		{
			Name:    "run",
			Summary: "Parses a macro file and runs all macros within",
			Description: "This command runs the macros in a file but doesn't load them. Use it for an init macro " +
				"which loads a program and sets up watches and breakpoints.",
			Exec: runMacroExec,
			Args: []CmdArg{{
				Name:     "file path",
				Required: true,
			}},
			CustomCompletion: fileCompletion,
		},
		{
			Name:    "set",
			Summary: "Sets a line within a macro",
			Description: "Set a new line or overwrite an existing one, allows you to quickly fix a loaded macro " +
				"in case any mistakes were made during recording",
			Exec: setMacroExec,
			Args: []CmdArg{
				{
					Name:     "name",
					Required: true,
				},
				{
					Name:     "line number",
					Required: true,
				},
				{
					Name:     "line",
					Required: true,
				},
			},
			CustomCompletion: func(s *Session, args []string) []prompt.Suggest {
				if len(args) < 2 {
					return macroCompletion(s, args)
				}
				return nil
			},
		},
		{
			Name:    "del",
			Summary: "Deletes a line from a macro",
			Exec:    delMacroExec,
			Args: []CmdArg{
				{
					Name:     "name",
					Required: true,
				},
				{
					Name:     "line number",
					Required: true,
				},
			},
			CustomCompletion: func(s *Session, args []string) []prompt.Suggest {
				if len(args) < 2 {
					return macroCompletion(s, args)
				}
				return nil
			},
		},
	},
}

// macroState holds the loaded macros of a session and the macro currently being recorded
type macroState struct {
	loadedMacros map[string]*Macro

	rec         bool
	recName     string
	recCommands []string
}

func newMacroState() macroState {
	return macroState{
		loadedMacros: make(map[string]*Macro),
	}
}

type Macro struct {
	File     string
	Saved    bool
	Commands []string
}

func (s *Session) lookupMacro(args []string) (string, *Macro, bool) {
	if len(args) < 1 || args[0] == "" {
		s.printRed("Missing required argument 'name'\n")
		return "", nil, false
	}

	m, found := s.macros.loadedMacros[args[0]]
	if !found {
		s.printRed("No macro with name '%s' exists, use 'macro list' to see valid options\n", args[0])
		return "", nil, false
	}

	return args[0], m, true
}

func listMacroExec(s *Session, args []string) {
	names := make([]string, 0, len(s.macros.loadedMacros))
	for name := range s.macros.loadedMacros {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		m := s.macros.loadedMacros[name]
		fmt.Fprintf(s.out, "%s(%d)", blue(name), len(m.Commands))
		if m.File != "" {
			fmt.Fprintf(s.out, " - %s", m.File)
		}

		if m.Saved {
			fmt.Fprintf(s.out, " [%s]\n", green("saved"))
		} else {
			fmt.Fprintf(s.out, " [%s]\n", red("not-saved"))
		}
	}
}

func showMacroExec(s *Session, args []string) {
	_, m, ok := s.lookupMacro(args)
	if !ok {
		return
	}

	indexPadSize := len(strconv.Itoa(len(m.Commands)))
	for i, c := range m.Commands {
		if isComment(c) {
			c = green(c)
		}

		fmt.Fprintf(s.out, "%s %s\n", blue(fmt.Sprintf("%*d", indexPadSize, i)), c)
	}
}

func isComment(line string) bool {
	return strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//")
}

func runMacroExec(s *Session, args []string) {
	if len(args) < 1 || args[0] == "" {
		s.printRed("Missing required argument 'file path'\n")
		return
	}

	s.runMacroFile(args[0])

	// Executing the macro overwrote lastArgs, point it back at this command so <enter> runs the file again
	s.lastArgs = []string{"macro", "run", args[0]}
}

// runMacroFile executes every macro in the file at path without loading them
func (s *Session) runMacroFile(path string) {
	mf, err := readMacroFile(path)
	if err != nil {
		s.printRed("%s\n", err)
		return
	}

	for _, m := range mf.Macros() {
		s.runMacro(&Macro{
			File:     path,
			Commands: m.Commands,
		})
	}
}

func (s *Session) runMacro(macro *Macro) {
	for _, command := range macro.Commands {
		if s.quit {
			return
		}

		printCmd := command
		if isComment(printCmd) {
			printCmd = green(printCmd)
		}

		// Echo the command with the prompt prefix, so the output reads like an interactive session
		fmt.Fprintf(s.out, "%s %s\n", blue("(bfdb)"), printCmd)
		s.Execute(command)
	}
}

func execMacroExec(s *Session, args []string) {
	name, macro, ok := s.lookupMacro(args)
	if !ok {
		return
	}

	s.runMacro(macro)

	s.lastArgs = []string{"macro", "exec", name}
}

func setMacroExec(s *Session, args []string) {
	if len(args) < 2 || args[1] == "" {
		s.printRed("Missing required argument 'line number'\n")
		return
	}

	if len(args) < 3 {
		s.printRed("Missing required argument 'line'\n")
		return
	}

	name, macro, ok := s.lookupMacro(args)
	if !ok {
		return
	}

	lineNum, err := strconv.Atoi(args[1])
	if err != nil {
		s.printRed("Invalid line number: %s\n", args[1])
		return
	}

	if lineNum < 0 {
		s.printRed("Line number can't be negative\n")
		return
	}

	lineArgs := args[2:]

	// Quotes are lost while splitting arguments, restore them for arguments containing spaces
	for i, arg := range lineArgs {
		if strings.Contains(arg, " ") {
			lineArgs[i] = fmt.Sprintf(`"%s"`, arg)
		}
	}

	line := strings.Join(lineArgs, " ")

	macro.Saved = false

	if lineNum >= len(macro.Commands) {
		macro.Commands = append(macro.Commands, line)
	} else {
		macro.Commands[lineNum] = line
	}

	showMacroExec(s, []string{name})
}

func delMacroExec(s *Session, args []string) {
	if len(args) < 2 || args[1] == "" {
		s.printRed("Missing required argument 'line number'\n")
		return
	}

	name, macro, ok := s.lookupMacro(args)
	if !ok {
		return
	}

	lineNum, err := strconv.Atoi(args[1])
	if err != nil {
		s.printRed("Invalid line number: %s\n", args[1])
		return
	}

	if lineNum < 0 {
		s.printRed("Line number can't be negative\n")
		return
	}

	if lineNum >= len(macro.Commands) {
		s.printRed("Line number out of bounds\n")
		showMacroExec(s, []string{name})
		return
	}

	macro.Saved = false
	macro.Commands = append(macro.Commands[:lineNum], macro.Commands[lineNum+1:]...)

	showMacroExec(s, []string{name})
}

func unloadMacroExec(s *Session, args []string) {
	name, _, ok := s.lookupMacro(args)
	if !ok {
		return
	}

	delete(s.macros.loadedMacros, name)

	fmt.Fprintln(s.out, "Macro un-loaded")
}

func startRecordingMacroExec(s *Session, args []string) {
	if len(args) < 1 || args[0] == "" {
		s.printRed("Missing required argument 'name'\n")
		return
	}

	name := args[0]
	if _, exists := s.macros.loadedMacros[name]; exists {
		s.printRed("Macro with name '%s' already exists\n", name)
		return
	}

	if s.macros.rec {
		s.printRed("Already recording a macro!\n")
		return
	}

	s.macros.rec = true
	s.macros.recName = name
	s.macros.recCommands = nil

	fmt.Fprintln(s.out, "Macro now recording")
}

func stopRecordingMacroExec(s *Session, args []string) {
	if !s.macros.rec {
		s.printRed("Macro recording already disabled\n")
		return
	}

	s.macros.rec = false
	s.macros.loadedMacros[s.macros.recName] = &Macro{
		Commands: s.macros.recCommands,
	}

	fmt.Fprintln(s.out, "Macro recording stopped")
}

func saveMacroExec(s *Session, args []string) {
	if len(args) < 1 || args[0] == "" {
		s.printRed("Missing required argument 'macro name'\n")
		return
	}

	macroName := args[0]
	macro, found := s.macros.loadedMacros[macroName]
	if !found {
		s.printRed("No macro with name '%s' exists, use 'macro list' to see valid options\n", macroName)
		return
	}

	if len(args) >= 2 && args[1] != "" {
		macro.File = args[1]
	}

	if macro.File == "" {
		s.printRed("Macro '%s' has no associated filepath, to save it you have to provide one\n", macroName)
		return
	}

	if err := saveMacro(macro.File, macroName, macro.Commands); err != nil {
		s.printRed("%s\n", err)
		return
	}

	macro.Saved = true

	fmt.Fprintln(s.out, "Macro saved to file")
}

var errNotAMacroFile = errors.New("file already exists but doesn't start with '" + magicMacroStr + "', " +
	"this might be a non-macro file. If this is a macro file, please add the comment to the start of the file")

// saveMacro writes the macro into the file at path. Other macros and comments in the file are preserved, an existing
// macro with the same name is overwritten.
func saveMacro(path, name string, commands []string) error {
	_, err := os.Stat(path)
	exists := err == nil

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open macro file: %w", err)
	}
	defer f.Close()

	mf, err := parseMacroFile(f)
	if err != nil {
		return fmt.Errorf("parse macro file: %w", err)
	}

	// Only overwrite files which are likely macro files, don't corrupt a file which happens to have the same name
	if exists && !mf.HasMagic {
		return errNotAMacroFile
	}

	if _, err = f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek macro file: %w", err)
	}
	if err = f.Truncate(0); err != nil {
		return fmt.Errorf("truncate macro file: %w", err)
	}

	overwritten := false
	for _, md := range mf.Macros() {
		if md.Name == name {
			md.Commands = commands
			overwritten = true
			break
		}
	}

	if !overwritten {
		mf.Parts = append(mf.Parts, &macroDefinition{
			Name:     name,
			Commands: commands,
		})
	}

	if err = mf.save(f); err != nil {
		return fmt.Errorf("write macro file: %w", err)
	}

	return nil
}

func loadMacroExec(s *Session, args []string) {
	if len(args) < 1 || args[0] == "" {
		s.printRed("Missing required argument 'file path'\n")
		return
	}

	mf, err := readMacroFile(args[0])
	if err != nil {
		s.printRed("%s\n", err)
		return
	}

	for _, m := range mf.Macros() {
		existing, exists := s.macros.loadedMacros[m.Name]
		if exists && !existing.Saved {
			s.printRed("Macro '%s' not loaded since it would overwrite an unsaved macro of the same name\n", m.Name)
			continue
		}

		s.macros.loadedMacros[m.Name] = &Macro{
			File:     args[0],
			Saved:    true,
			Commands: m.Commands,
		}

		fmt.Fprintf(s.out, "Macro '%s' loaded\n", m.Name)
	}
}

func readMacroFile(path string) (*macroFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open macro file: %w", err)
	}
	defer f.Close()

	mf, err := parseMacroFile(f)
	if err != nil {
		return nil, fmt.Errorf("parse macro file: %w", err)
	}

	return mf, nil
}

// macroFile is a parsed macro file. Comments inside and outside of macro definitions are kept so a file can be
// re-written without losing them.
type macroFile struct {
	// HasMagic is true if the file started with magicMacroStr, files without it are never overwritten
	HasMagic bool
	Parts    []macroFilePart
}

const magicMacroStr = "# bfdb macro file, don't remove this comment"

// save writes a normalized version of the file, the original formatting is not preserved
func (mf *macroFile) save(w io.Writer) error {
	if _, err := fmt.Fprintln(w, magicMacroStr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, p := range mf.Parts {
		if _, err := fmt.Fprint(w, p.MacroString()); err != nil {
			return fmt.Errorf("write part: %w", err)
		}
	}

	return nil
}

// Macros returns all macro definitions in the file
func (mf *macroFile) Macros() []*macroDefinition {
	var m []*macroDefinition
	for _, p := range mf.Parts {
		if md, ok := p.(*macroDefinition); ok {
			m = append(m, md)
		}
	}

	return m
}

type macroFilePart interface {
	MacroString() string
}

// macroDefinition is a name followed by a colon and indented commands. An empty line ends the definition.
type macroDefinition struct {
	Name     string
	Commands []string
}

func (md *macroDefinition) MacroString() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s:\n", md.Name)
	for _, c := range md.Commands {
		sb.WriteString(" ")
		sb.WriteString(c)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

// macroComment is a comment outside of a macro definition, starting with # or //. Only # is written back.
type macroComment string

func (mc macroComment) MacroString() string {
	return fmt.Sprintf("# %s\n", mc)
}

func parseMacroFile(r io.Reader) (*macroFile, error) {
	var (
		mf      macroFile
		cur     *macroDefinition
		scanner = bufio.NewScanner(r)
	)

	flush := func() {
		if cur != nil {
			mf.Parts = append(mf.Parts, cur)
			cur = nil
		}
	}

	firstLine := true
	for scanner.Scan() {
		line := scanner.Text()

		// Files without the magic string are still parsed, users don't have to write it for a new file
		if firstLine {
			firstLine = false
			if line == magicMacroStr {
				mf.HasMagic = true
				continue
			}
		}

		line = strings.TrimSpace(line)

		if line == "" {
			flush()
			continue
		}

		if isComment(line) {
			text := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(line, "//"), "#"))

			if cur == nil {
				mf.Parts = append(mf.Parts, macroComment(text))
				continue
			}

			// Comments within a macro become comment commands, which are echoed but not executed
			cur.Commands = append(cur.Commands, "# "+text)
			continue
		}

		if strings.HasSuffix(line, ":") {
			flush()
			cur = &macroDefinition{
				Name: strings.TrimSpace(strings.TrimSuffix(line, ":")),
			}
			continue
		}

		// Lines outside of a definition are discarded
		if cur != nil {
			cur.Commands = append(cur.Commands, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read line: %w", err)
	}

	flush()

	return &mf, nil
}

func macroCompletion(s *Session, args []string) []prompt.Suggest {
	macroNames := make([]string, 0, len(s.macros.loadedMacros))
	for name := range s.macros.loadedMacros {
		macroNames = append(macroNames, name)
	}
	sort.Strings(macroNames)

	var suggestions []prompt.Suggest
	if len(args) == 0 {
		for _, name := range macroNames {
			suggestions = append(suggestions, prompt.Suggest{Text: name})
		}
		return suggestions
	}

	ranks := fuzzy.RankFind(args[0], macroNames)
	sort.Sort(ranks)

	for _, rank := range ranks {
		suggestions = append(suggestions, prompt.Suggest{Text: rank.Target})
	}

	return suggestions
}
