package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/rsned/factory-planner/internal/factory/result"
)

type querier interface {
	Query(ctx context.Context, raw string) (result.Result, error)
}

// session tracks the last result and its breadcrumbs so reactions typed as
// :prev, :next, :info or :1 to :9 can page through it.
type session struct {
	q       querier
	crumbs  *result.Breadcrumbs
	current result.Result
}

func newSession(q querier) *session {
	return &session{q: q}
}

// Submit runs a query line or applies a reaction line and returns the
// message to show.
func (s *session) Submit(ctx context.Context, line string) (*result.Message, error) {
	line = strings.TrimSpace(line)
	if name, ok := strings.CutPrefix(line, ":"); ok {
		return s.react(ctx, name)
	}

	res, err := s.q.Query(ctx, line)
	if err != nil {
		return nil, err
	}
	s.crumbs = result.NewBreadcrumbs(line)
	s.current = res
	return res.Message(s.crumbs), nil
}

func (s *session) react(ctx context.Context, name string) (*result.Message, error) {
	r, ok := result.ParseReaction(name)
	if !ok {
		return nil, fmt.Errorf("unknown reaction :%s (use :prev, :next, :info or :1 to :9)", name)
	}
	if s.current == nil {
		return nil, fmt.Errorf("nothing to react to, run a query first")
	}

	if q, ok := s.current.HandleReaction(r, s.crumbs); ok {
		res, err := s.q.Query(ctx, q)
		if err != nil {
			return nil, err
		}
		s.current = res
	}
	return s.current.Message(s.crumbs), nil
}

func (a *app) replCmd() *cli.Command {
	return &cli.Command{
		Name:  "repl",
		Usage: "Run queries interactively",
		Description: `Read queries line by line. Lines starting with ':' act on the last
result: :prev, :next and :info page through matches and :1 to :9 pick one.
:quit or end of input leaves.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			eng, closeDB, err := a.openEngine(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			root := cmd.Root()
			s := newSession(eng)
			scanner := bufio.NewScanner(root.Reader)
			for {
				fmt.Fprint(root.Writer, "> ")
				if !scanner.Scan() {
					fmt.Fprintln(root.Writer)
					return scanner.Err()
				}
				if ctx.Err() != nil {
					return nil
				}

				line := strings.TrimSpace(scanner.Text())
				switch line {
				case "":
					continue
				case ":quit", ":q":
					return nil
				}

				m, err := s.Submit(ctx, line)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					errorColor.Fprintln(root.Writer, err)
					continue
				}
				writeMessage(root.Writer, m)
			}
		},
	}
}
