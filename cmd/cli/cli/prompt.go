// Package cli provides the compress, decompress, and list commands.
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"unicode"

	"github.com/NVIDIA/ouch/cmn/archive"
	"github.com/NVIDIA/ouch/cmn/conflict"

	"golang.org/x/term"
)

const conflictChoices = "[y]es, overwrite / [n]o, skip / [r]ename / [m]erge / [a]bort (uppercase: apply to all)"

// interactive questions: only when stdin is a terminal
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	mu  sync.Mutex
	tty bool
}

func newPrompter(in *os.File, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out, tty: term.IsTerminal(int(in.Fd()))}
}

func (p *prompter) readLine(question string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// conflict.AskFunc
func (p *prompter) ask(q *conflict.Question) (conflict.Action, bool, error) {
	if !p.tty {
		return conflict.Abort, false, conflict.ErrNoPrompt
	}
	what := "File"
	if q.ExistingDir {
		what = "Directory"
	}
	question := fmt.Sprintf("%s %s already exists.\n%s: ", what, fcyan(q.Path), conflictChoices)
	for {
		answer, err := p.readLine(question)
		if err != nil {
			return conflict.Abort, false, err
		}
		if action, all, ok := parseAnswer(answer); ok {
			return action, all, nil
		}
	}
}

// single letter (or word); uppercase first letter applies to all
func parseAnswer(s string) (action conflict.Action, all, ok bool) {
	if s == "" {
		return conflict.Abort, false, false
	}
	first := rune(s[0])
	all = unicode.IsUpper(first)
	switch unicode.ToLower(first) {
	case 'y', 'o':
		action = conflict.Overwrite
	case 'n', 's':
		action = conflict.Skip
	case 'r':
		action = conflict.Rename
	case 'm':
		action = conflict.Merge
	case 'a', 'q':
		action = conflict.Abort
	default:
		return conflict.Abort, false, false
	}
	return action, all, true
}

// archive.Confirm: formats inferred from the content
func (p *prompter) confirm(policy conflict.Policy) archive.Confirm {
	return func(q *archive.SniffQuestion) bool {
		switch policy {
		case conflict.AlwaysYes:
			return true
		case conflict.AlwaysNo:
			return false
		}
		if !p.tty {
			return false
		}
		var question string
		if len(q.ByExt) == 0 {
			question = fmt.Sprintf("%s has no known extension but looks like %q. Proceed? [y/N]: ",
				fcyan(q.Path), q.Detected)
		} else {
			question = fmt.Sprintf("%s is named %q but looks like %q. Proceed (as named)? [y/N]: ",
				fcyan(q.Path), q.ByExt, q.Detected)
		}
		answer, err := p.readLine(question)
		return err == nil && strings.HasPrefix(strings.ToLower(answer), "y")
	}
}
