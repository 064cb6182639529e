package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleMacroFile = magicMacroStr + `
# setup for the hello world program
init:
 load hello.bf
 // stop once the first letter is ready
 watch 1 72

step3:
 step 3

ignored line
`

func TestParseMacroFile(t *testing.T) {
	mf, err := parseMacroFile(strings.NewReader(exampleMacroFile))
	require.NoError(t, err)

	assert.True(t, mf.HasMagic)
	require.Len(t, mf.Parts, 3)
	assert.Equal(t, macroComment("setup for the hello world program"), mf.Parts[0])

	macros := mf.Macros()
	require.Len(t, macros, 2)

	assert.Equal(t, "init", macros[0].Name)
	assert.Equal(t, []string{
		"load hello.bf",
		"# stop once the first letter is ready",
		"watch 1 72",
	}, macros[0].Commands)

	// The line after the empty line is outside of any definition
	assert.Equal(t, "step3", macros[1].Name)
	assert.Equal(t, []string{"step 3"}, macros[1].Commands)
}

func TestParseMacroFileWithoutMagic(t *testing.T) {
	mf, err := parseMacroFile(strings.NewReader("m:\n step\n"))
	require.NoError(t, err)

	assert.False(t, mf.HasMagic)
	require.Len(t, mf.Macros(), 1)
	assert.Equal(t, []string{"step"}, mf.Macros()[0].Commands)
}

func TestSaveMacro(t *testing.T) {
	path := filepath.Join(t.TempDir(), "macros.txt")

	require.NoError(t, saveMacro(path, "a", []string{"step", "# comment"}))
	require.NoError(t, saveMacro(path, "b", []string{"run"}))
	// Overwrites the existing macro
	require.NoError(t, saveMacro(path, "a", []string{"step 2"}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, magicMacroStr+"\na:\n step 2\n\nb:\n run\n\n", string(content))
}

func TestSaveMacroRefusesOtherFiles(t *testing.T) {
	path := writeFile(t, "important.conf", "key = value\n")

	err := saveMacro(path, "a", []string{"step"})
	assert.ErrorIs(t, err, errNotAMacroFile)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "key = value\n", string(content))
}

func TestMacroRecordAndExec(t *testing.T) {
	s, out := newSession(t, "+++++.")

	exec(s, out, "macro start two", "# a comment", "step", "step", "macro stop")
	assert.Equal(t, 2, s.VM().Steps())

	got := exec(s, out, "macro show two")
	assert.Equal(t, "0 # a comment\n1 step\n2 step\n", got)

	got = exec(s, out, "macro exec two")
	assert.Equal(t, 4, s.VM().Steps())
	assert.Contains(t, got, "(bfdb) step")

	// <enter> repeats the whole macro
	exec(s, out, "")
	assert.Equal(t, 6, s.VM().Steps())
}

func TestMacroEdit(t *testing.T) {
	s, out := newSession(t, "+")

	exec(s, out, "macro start m", "step", "macro stop")

	got := exec(s, out, `macro set m 1 watch 0 "1"`)
	assert.Equal(t, "0 step\n1 watch 0 1\n", got)

	got = exec(s, out, "macro del m 0")
	assert.Equal(t, "0 watch 0 1\n", got)

	assert.Contains(t, exec(s, out, "macro del m 5"), "Line number out of bounds")
	assert.Contains(t, exec(s, out, "macro del nope 0"), "No macro with name 'nope' exists")

	exec(s, out, "macro un-load m")
	assert.Empty(t, s.macros.loadedMacros)
}

func TestMacroSaveLoadRun(t *testing.T) {
	s, out := newSession(t, "++++")
	path := filepath.Join(t.TempDir(), "session.macro")

	exec(s, out, "macro start twice", "step", "step", "macro stop")
	assert.Contains(t, exec(s, out, "macro save twice"), "has no associated filepath")
	assert.Contains(t, exec(s, out, "macro save twice "+path), "Macro saved to file")
	assert.Equal(t, "twice(2) - "+path+" [saved]\n", exec(s, out, "macro list"))

	other, otherOut := newSession(t, "++++")
	assert.Contains(t, exec(other, otherOut, "macro load "+path), "Macro 'twice' loaded")

	exec(other, otherOut, "macro run "+path)
	assert.Equal(t, 2, other.VM().Steps())
	assert.Equal(t, []string{"macro", "run", path}, other.lastArgs)
}

func TestRunMacroFileStopsOnExit(t *testing.T) {
	s, _ := newSession(t, "++++")
	path := writeFile(t, "init.macro", "init:\n step\n exit\n step\n")

	s.runMacroFile(path)
	assert.True(t, s.Quit())
	assert.Equal(t, 1, s.VM().Steps())
}
