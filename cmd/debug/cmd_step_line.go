package debug

var cmdStepLine = Command{
	Name:    "step-line",
	Aliases: []string{"sl"},
	Summary: "Step through the program one source line at a time",
	Exec:    stepLineExec,
}

func stepLineExec(s *Session, args []string) {
	if !s.requireVM() {
		return
	}

	startLine := s.currentLine()

	// The first step is explicit so a stopped VM continues
	s.vm.Step()
	err := s.runUntil(func() bool {
		curLine := s.currentLine()
		return curLine == 0 || curLine != startLine
	}, s.cfg.MaxSteps)
	s.reportRunErr(err)

	s.reportState()
	listLinesExec(s, nil)
}

// currentLine returns the source line of the next instruction, 0 if there is none
func (s *Session) currentLine() int {
	inst, ok := s.vm.Current()
	if !ok {
		return 0
	}

	return inst.Line
}
