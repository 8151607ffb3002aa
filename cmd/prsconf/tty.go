package main

import (
	"errors"
	"os"

	"golang.org/x/term"
)

var errNoTerminal = errors.New("prsconf needs an interactive terminal; try 'prsconf export' or 'prsconf history' instead")

// isTerminal is replaced in tests.
var isTerminal = term.IsTerminal

// requireTerminal fails unless every file is attached to a terminal.
func requireTerminal(files ...*os.File) error {
	for _, f := range files {
		if f == nil || !isTerminal(int(f.Fd())) {
			return errNoTerminal
		}
	}
	return nil
}
