package program

import (
	"fmt"
	"os"
)

// LoadFile reads and loads the program at path. The source text is returned as well so callers can display it.
func LoadFile(path string) (Program, string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("Error reading file: %w", err)
	}

	prog, err := Load(string(src))
	if err != nil {
		return nil, "", fmt.Errorf("Parser error: %w", err)
	}

	return prog, string(src), nil
}

// ReadInput reads the input bytes for a program, an empty path results in no input.
func ReadInput(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}

	input, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Error reading file: %w", err)
	}

	return input, nil
}
