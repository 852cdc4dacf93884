package blitz

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"text/scanner"
)

type CommandKind int

const (
	CmdNone CommandKind = iota

	// Turn decisions. These translate to table actions.
	CmdKnock
	CmdDrawFromDeck
	CmdDrawFromDiscard
	CmdDiscard

	// Non-game commands
	CmdShow
	CmdLog
	CmdHelp
	CmdQuit
)

func (k CommandKind) String() string {
	switch k {
	case CmdKnock:
		return "knock"
	case CmdDrawFromDeck:
		return "draw"
	case CmdDrawFromDiscard:
		return "drawpile"
	case CmdDiscard:
		return "discard"
	case CmdShow:
		return "show"
	case CmdLog:
		return "log"
	case CmdHelp:
		return "help"
	case CmdQuit:
		return "quit"
	default:
		return "none"
	}
}

func (k CommandKind) IsTurnCommand() bool {
	return CmdKnock <= k && k <= CmdDiscard
}

// Command is a parsed line of user input. HandIndex is only meaningful for
// CmdDiscard and is DiscardDrawn when the pending card is thrown away.
type Command struct {
	Kind      CommandKind `json:"kind"`
	HandIndex int         `json:"hand_index"`
}

// Action converts a turn command to the table action it stands for.
func (c Command) Action() (Action, bool) {
	switch c.Kind {
	case CmdKnock:
		return Knock(), true
	case CmdDrawFromDeck:
		return DrawFromDeck(), true
	case CmdDrawFromDiscard:
		return DrawFromDiscard(), true
	case CmdDiscard:
		return Discard(c.HandIndex), true
	default:
		return Action{}, false
	}
}

const CommandSyntax = `Commands:
	knock | k                 end the round after everyone else takes a final turn
	draw | d                  draw from the deck
	drawpile | dp             take the top card of the discard pile
	discard N | x N           discard hand card N (1-3), keeping the drawn card
	discard drawn | x drawn   discard the card you just drew
	show                      show the table
	log                       show the discard log
	help                      show this text
	quit | q                  leave the game`

var ErrEmptyCommand = errors.New("empty command")

// Syntax:
//	knock | k
//	draw | d
//	drawpile | dp
//	discard NUMBER | x NUMBER     (NUMBER is the 1-based hand position)
//	discard drawn | x drawn
//	show
//	log
//	help
//	quit | q

func ParseCommandFromInput(input string) (Command, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Command{}, ErrEmptyCommand
	}

	var s scanner.Scanner
	s.Init(strings.NewReader(input))
	s.Filename = "cmd"
	s.Mode = scanner.GoTokens
	s.Error = func(*scanner.Scanner, string) {}

	tok, command, err := parseCommand(&s, s.Scan())
	if err != nil {
		return command, err
	}

	if tok != scanner.EOF {
		return command, fmt.Errorf("Unexpected trailing input '%s'", s.TokenText())
	}
	return command, nil
}

func parseCommand(s *scanner.Scanner, tok rune) (rune, Command, error) {
	command := Command{Kind: CmdNone}

	if tok != scanner.Ident {
		return tok, command, fmt.Errorf("Expected a command (knock|draw|drawpile|discard|show|log|quit), found: '%s'", s.TokenText())
	}

	switch strings.ToLower(s.TokenText()) {
	case "knock", "k":
		command.Kind = CmdKnock
		return s.Scan(), command, nil

	case "draw", "d":
		command.Kind = CmdDrawFromDeck
		return s.Scan(), command, nil

	case "drawpile", "dp":
		command.Kind = CmdDrawFromDiscard
		return s.Scan(), command, nil

	case "discard", "x":
		command.Kind = CmdDiscard
		tok := s.Scan()
		switch tok {
		case scanner.Int:
			number, err := strconv.Atoi(s.TokenText())
			if err != nil || number < 1 || number > HandSize {
				return tok, command, fmt.Errorf("Expected a hand position between 1 and %d. Got '%s'", HandSize, s.TokenText())
			}
			command.HandIndex = number - 1
			return s.Scan(), command, nil

		case scanner.Ident:
			if strings.ToLower(s.TokenText()) != "drawn" {
				return tok, command, fmt.Errorf("Expected a hand position or 'drawn'. Got '%s'", s.TokenText())
			}
			command.HandIndex = DiscardDrawn
			return s.Scan(), command, nil

		default:
			return tok, command, errors.New("Expected a hand position or 'drawn' after discard")
		}

	case "show":
		command.Kind = CmdShow
		return s.Scan(), command, nil

	case "log":
		command.Kind = CmdLog
		return s.Scan(), command, nil

	case "help", "h":
		command.Kind = CmdHelp
		return s.Scan(), command, nil

	case "quit", "q":
		command.Kind = CmdQuit
		return s.Scan(), command, nil

	default:
		return tok, command, fmt.Errorf("Expected a command (knock|draw|drawpile|discard|show|log|quit), found '%s'", s.TokenText())
	}
}

var playerNameRe = regexp.MustCompile(`^[[:alnum:]_ ]+$`)

func IsUserNameAllowed(name string) bool {
	return strings.TrimSpace(name) != "" && playerNameRe.MatchString(name)
}
