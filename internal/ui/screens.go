package ui

import (
	"context"
	"strings"

	"github.com/omochice/netbattle/internal/session"
	"github.com/omochice/netbattle/pkg/protocol"
)

const (
	buttonLogin = iota
	buttonQuitGame
	buttonLaunchBattle
	buttonInviteUser
	buttonJoinBattle
	buttonLogout
	buttonCount
)

// Contiguous button ranges per screen
const (
	startFirst, startEnd = buttonLogin, buttonQuitGame + 1
	mainFirst, mainEnd   = buttonLaunchBattle, buttonLogout + 1
)

func (e *Engine) layout() [buttonCount]Button {
	return [buttonCount]Button{
		buttonLogin:        {Col: 24, Row: 5, Label: "login", Action: e.login},
		buttonQuitGame:     {Col: 24, Row: 13, Label: " quit", Action: e.quit},
		buttonLaunchBattle: {Col: 7, Row: 3, Label: "launch battle", Action: e.launchBattle},
		buttonInviteUser:   {Col: 7, Row: 7, Label: " invite user ", Action: placeholder},
		buttonJoinBattle:   {Col: 7, Row: 11, Label: " join battle ", Action: placeholder},
		buttonLogout:       {Col: 7, Row: 15, Label: "    logout   ", Action: e.logout},
	}
}

func (e *Engine) startScreen(ctx context.Context) error {
	for {
		e.clearScreen()
		for {
			changed := e.session.Changed()
			if e.session.State() != session.NotLoggedIn {
				break
			}

			e.drawButtons(buttonLogin, buttonQuitGame)
			e.repaintStatus()

			id, sig, err := e.choose(ctx, startFirst, startEnd, changed)
			if err != nil {
				return err
			}
			if sig == Exit {
				return nil
			}
			if id < 0 {
				continue
			}

			sig, err = e.buttons[id].Action(ctx)
			if err != nil {
				return err
			}
			if sig == Exit {
				return nil
			}
		}

		sig, err := e.mainScreen(ctx)
		if err != nil {
			return err
		}
		if sig == Exit {
			return nil
		}
	}
}

func (e *Engine) mainScreen(ctx context.Context) (Signal, error) {
	e.clearScreen()
	for {
		changed := e.session.Changed()
		switch e.session.State() {
		case session.NotLoggedIn:
			return PopScreen, nil
		case session.InBattle:
			if err := e.battleScreen(ctx); err != nil {
				return Continue, err
			}
			e.clearScreen()
			continue
		}

		e.drawButtons(buttonLaunchBattle, buttonInviteUser, buttonJoinBattle, buttonLogout)
		e.repaintStatus()

		id, sig, err := e.choose(ctx, mainFirst, mainEnd, changed)
		if err != nil || sig == Exit {
			return sig, err
		}
		if id < 0 {
			continue
		}

		sig, err = e.buttons[id].Action(ctx)
		if err != nil || sig != Continue {
			return sig, err
		}
	}
}

// battleScreen idles until the session leaves the battle
func (e *Engine) battleScreen(ctx context.Context) error {
	e.clearScreen()
	e.repaintStatus()
	e.out.Write(-2, "battle in progress")
	defer e.out.Write(-2, "")

	for {
		changed := e.session.Changed()
		if e.session.State() != session.InBattle {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}

func (e *Engine) login(ctx context.Context) (Signal, error) {
	name, err := e.in.ReadLine(ctx, "your name: ")
	if err != nil {
		return Continue, err
	}
	// Record the name as it fits on the wire
	req := protocol.NewLogin(name)
	name = req.User()
	e.out.Write(0, "register your name '%s' to server...", name)

	e.session.BeginLogin(name)
	if err := e.send.SendFrame(req); err != nil {
		return Continue, err
	}
	return Continue, nil
}

func (e *Engine) quit(context.Context) (Signal, error) {
	if err := e.send.SendFrame(protocol.NewCommand(protocol.CommandUserQuit)); err != nil {
		return Exit, err
	}
	return Exit, nil
}

func (e *Engine) launchBattle(ctx context.Context) (Signal, error) {
	invite, err := e.askYesNo(ctx, "invite friend? (yes/no)")
	if err != nil {
		return Continue, err
	}

	req := protocol.NewCommand(protocol.CommandLaunchBattle)
	if invite {
		friend, err := e.in.ReadLine(ctx, "your friend name: ")
		if err != nil {
			return Continue, err
		}
		req = protocol.NewLaunchBattle(friend)
	}

	if err := e.send.SendFrame(req); err != nil {
		return Continue, err
	}
	return Continue, nil
}

func (e *Engine) logout(context.Context) (Signal, error) {
	e.session.Logout()
	if err := e.send.SendFrame(protocol.NewCommand(protocol.CommandLogout)); err != nil {
		return PopScreen, err
	}
	e.out.Write(0, "logout")
	return PopScreen, nil
}

// placeholder backs buttons that are shown but not implemented yet
func placeholder(context.Context) (Signal, error) {
	return Continue, nil
}

// askYesNo repeats prompt until the answer is y, yes, n or no
func (e *Engine) askYesNo(ctx context.Context, prompt string) (bool, error) {
	for {
		answer, err := e.in.ReadLine(ctx, prompt)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}

type command func(ctx context.Context, arg string) (Signal, error)

func (e *Engine) commandTable() map[string]command {
	return map[string]command{
		"quit": func(ctx context.Context, _ string) (Signal, error) { return e.quit(ctx) },
		"help": e.help,
	}
}

func (e *Engine) help(_ context.Context, arg string) (Signal, error) {
	switch arg {
	case "":
		e.out.Write(0, "usage: help [--list|command]")
	case "--list":
		e.out.Write(0, "quit, help")
	default:
		e.out.Write(0, "no help for '%s'", arg)
	}
	return Continue, nil
}

// commandLine reads and runs one command. Unknown commands are reported on
// the status line
func (e *Engine) commandLine(ctx context.Context) (Signal, error) {
	line, err := e.in.ReadLine(ctx, "command: ")
	if err != nil {
		return Continue, err
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Continue, nil
	}

	cmd, ok := e.commands[fields[0]]
	if !ok {
		e.out.Write(0, "invalid command '%s'", fields[0])
		return Continue, nil
	}

	var arg string
	if len(fields) > 1 {
		arg = fields[1]
	}
	return cmd(ctx, arg)
}
