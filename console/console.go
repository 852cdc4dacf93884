// Package console is a line based front end for a session: the human types
// commands, opponents play in between, and every event is printed.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/nrawrx3/blitz"
	"github.com/nrawrx3/blitz/session"
	"go.uber.org/zap"
)

const (
	eventRingCapacity = 64
	discardLogLimit   = 20
)

var ErrQuit = errors.New("quit")

type Console struct {
	session   *session.Session
	localName string
	out       io.Writer
	events    *EventRing
	logger    *zap.SugaredLogger
}

func New(s *session.Session, out io.Writer, logger *zap.SugaredLogger) *Console {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Console{
		session:   s,
		localName: s.Table().LocalPlayerName(),
		out:       out,
		events:    NewEventRing(eventRingCapacity),
		logger:    logger,
	}
}

func (c *Console) printEvents(events []blitz.GameEvent) {
	settled := false
	for _, event := range events {
		msg := event.StringMessage(c.localName)
		c.events.Push(msg)
		fmt.Fprintln(c.out, msg)

		if _, ok := event.(blitz.RoundSettledEvent); ok {
			settled = true
		}
	}

	if settled {
		snapshot := c.session.Table().Snapshot()
		if snapshot.Phase != blitz.PhaseGameEnd {
			RenderReveal(c.out, snapshot.LastReveal, c.localName)
		}
	}
}

func (c *Console) runOpponents(ctx context.Context) error {
	err := c.session.RunOpponents(ctx, c.printEvents)
	if err != nil {
		c.logger.Errorf("Opponents stopped: %s", err)
		fmt.Fprintf(c.out, "Opponent turn failed: %s\n", err)
	}
	return err
}

// Start deals the first round and plays until the human is on turn.
func (c *Console) Start(ctx context.Context) error {
	events, err := c.session.Start(ctx)
	if err != nil {
		return err
	}
	c.printEvents(events)
	if err := c.runOpponents(ctx); err != nil && !blitz.IsGatewayError(err) {
		return err
	}
	RenderTable(c.out, c.session.Table().Snapshot(), c.localName)
	return nil
}

// Execute runs one line of input. It returns ErrQuit on quit and when the game
// is over.
func (c *Console) Execute(ctx context.Context, line string) error {
	command, err := blitz.ParseCommandFromInput(line)
	if errors.Is(err, blitz.ErrEmptyCommand) {
		return nil
	}
	if err != nil {
		fmt.Fprintln(c.out, err)
		return nil
	}

	switch command.Kind {
	case blitz.CmdQuit:
		return ErrQuit
	case blitz.CmdHelp:
		fmt.Fprintln(c.out, blitz.CommandSyntax)
		return nil
	case blitz.CmdShow:
		RenderTable(c.out, c.session.Table().Snapshot(), c.localName)
		return nil
	case blitz.CmdLog:
		RenderDiscardLog(c.out, c.session.Table().Snapshot().DiscardLog, discardLogLimit)
		return nil
	}

	action, _ := command.Action()

	// Opponents stalled on a gateway error get another go before the human acts.
	if !c.session.IsHumanTurn() && !c.session.IsOver() {
		if err := c.runOpponents(ctx); err != nil {
			return nil
		}
	}

	events, err := c.session.HumanAction(ctx, action)
	switch {
	case errors.Is(err, blitz.ErrIllegalAction):
		fmt.Fprintf(c.out, "Can't %s now: %s\n", command.Kind, reasonOf(err))
		return nil
	case blitz.IsGatewayError(err):
		fmt.Fprintf(c.out, "Deck service failed, try again: %s\n", err)
		return nil
	case err != nil:
		return err
	}
	c.printEvents(events)

	if c.session.IsHumanTurn() {
		RenderTable(c.out, c.session.Table().Snapshot(), c.localName)
		return nil
	}

	if err := c.runOpponents(ctx); err != nil && !blitz.IsGatewayError(err) {
		return err
	}

	snapshot := c.session.Table().Snapshot()
	RenderTable(c.out, snapshot, c.localName)
	if snapshot.Phase == blitz.PhaseGameEnd {
		return ErrQuit
	}
	return nil
}

func reasonOf(err error) string {
	var illegal *blitz.IllegalActionError
	if errors.As(err, &illegal) {
		return illegal.Reason
	}
	return err.Error()
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("knock"),
	readline.PcItem("draw"),
	readline.PcItem("drawpile"),
	readline.PcItem("discard",
		readline.PcItem("1"),
		readline.PcItem("2"),
		readline.PcItem("3"),
		readline.PcItem("drawn"),
	),
	readline.PcItem("show"),
	readline.PcItem("log"),
	readline.PcItem("help"),
	readline.PcItem("quit"),
)

// RunREPL reads commands until quit, end of input or the end of the game.
func (c *Console) RunREPL(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		Stdout:          c.out,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	if err := c.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Type help for the list of commands.")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line, err := rl.Readline()
		if err != nil {
			// io.EOF or readline.ErrInterrupt
			return nil
		}

		err = c.Execute(ctx, strings.TrimSpace(line))
		if errors.Is(err, ErrQuit) {
			if winner := c.session.Table().Snapshot().WinnerPlayer(); winner != nil {
				fmt.Fprintf(c.out, "Game over, %s won.\n", yourName(winner.Name, c.localName))
			}
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// RecentEvents returns up to n of the latest status lines, oldest first.
func (c *Console) RecentEvents(n int) []string {
	return c.events.Last(n)
}
