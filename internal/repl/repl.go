// Package repl is the line-oriented conversational front end.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/paperstack-cli/internal/conversation"
	"github.com/KaramelBytes/paperstack-cli/internal/pipeline"
	"github.com/KaramelBytes/paperstack-cli/internal/utils"
)

// Options configures a REPL.
type Options struct {
	In       io.Reader
	Out      io.Writer
	Pipeline *pipeline.Pipeline
	Store    conversation.Store // default in-memory
	// SessionID resumes a stored session; empty starts a new one.
	SessionID string
	Logger    *slog.Logger
}

// REPL reads one line at a time and answers with one text block.
type REPL struct {
	in        *bufio.Scanner
	out       io.Writer
	pipe      *pipeline.Pipeline
	machine   *conversation.Machine
	sessionID string
	log       *slog.Logger
}

// New builds a REPL. Paper paths are resolved on the local filesystem.
func New(opts Options) *REPL {
	store := opts.Store
	if store == nil {
		store = conversation.NewMemoryStore()
	}
	id := opts.SessionID
	if id == "" {
		id = conversation.NewSession().ID
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	sc := bufio.NewScanner(opts.In)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	return &REPL{
		in:        sc,
		out:       opts.Out,
		pipe:      opts.Pipeline,
		machine:   conversation.NewMachine(store, conversation.Classifier{Exists: utils.FileExists}),
		sessionID: id,
		log:       log,
	}
}

// SessionID identifies the conversation, for resuming it later.
func (r *REPL) SessionID() string { return r.sessionID }

func isQuit(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "quit", "exit", "q":
		return true
	}
	return false
}

// Run loops until quit, end of input or ctx cancellation.
func (r *REPL) Run(ctx context.Context) error {
	fmt.Fprintln(r.out, "paperstack: research paper to web-app scaffold")
	fmt.Fprintln(r.out, "Say hi, give the path to a PDF, or type quit to exit.")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(r.out, "\n> ")
		if !r.in.Scan() {
			if err := r.in.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			fmt.Fprintln(r.out)
			return nil
		}
		line := r.in.Text()
		if isQuit(line) {
			fmt.Fprintln(r.out, "Goodbye!")
			return nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		fmt.Fprintln(r.out, r.Respond(ctx, line))
	}
}

// Respond answers a single line.
func (r *REPL) Respond(ctx context.Context, line string) string {
	sess, act, err := r.machine.Handle(ctx, r.sessionID, line)
	if err != nil {
		r.log.Error("session update failed", "session", r.sessionID, "error", err)
		return "Error: " + err.Error()
	}
	if act.Kind != conversation.ActionGenerate {
		return act.Message
	}
	return r.generate(ctx, sess)
}

func (r *REPL) generate(ctx context.Context, sess conversation.Session) string {
	data, err := os.ReadFile(sess.Paper)
	if err != nil {
		return fmt.Sprintf("Error: reading %s: %v", sess.Paper, err)
	}
	out := r.pipe.Run(ctx, pipeline.Request{
		Filename:   filepath.Base(sess.Paper),
		Data:       data,
		Technology: string(sess.Technology),
	})
	if out.Err != nil {
		return "Error: " + out.Err.Message + describeCause(out.Err)
	}
	return Report(out.Result)
}

func describeCause(e *pipeline.Error) string {
	if e.Err == nil {
		return ""
	}
	return ": " + e.Err.Error()
}
