package dispatcher

import (
	"fmt"
	"strings"

	"github.com/omochice/netbattle/pkg/protocol"
)

func (d *Dispatcher) table() map[protocol.Message]Handler {
	return map[protocol.Message]Handler{
		protocol.MessageLoginSuccess:          d.loginSuccess,
		protocol.MessageNotLogin:              d.say("you haven't logged in"),
		protocol.MessageLoginFailDupUserID:    d.loginFailed("your name has been registered!"),
		protocol.MessageLoginFailServerLimits: d.loginFailed("server fail"),
		protocol.MessageYouHaveLogined:        d.say("you have logged in"),
		protocol.MessageFriendAcceptBattle:    d.friendAccepted,
		protocol.MessageFriendRejectBattle:    d.sayFriend("friend %s reject your invitation"),
		protocol.MessageFriendNotLogin:        d.sayFriend("friend %s hasn't logged in"),
		protocol.MessageFriendAlreadyInBattle: d.sayFriend("friend %s has joined another battle"),
		protocol.MessageInviteToBattle:        d.sayFriend("friend %s invites you to a battle [y|n]?"),
		protocol.MessageUserQuitBattle:        d.sayFriend("friend %s quit battle"),
		protocol.MessageBattleDisbanded:       d.battleDisbanded,
		protocol.MessageBattleInformation:     func(protocol.ResponseFrame) {},
		protocol.MessageYouAreDead:            d.youAreDead,
	}
}

func (d *Dispatcher) say(msg string) Handler {
	return func(protocol.ResponseFrame) {
		d.out.Server(msg)
	}
}

func (d *Dispatcher) sayFriend(format string) Handler {
	return func(frame protocol.ResponseFrame) {
		d.out.Server(fmt.Sprintf(format, friendName(frame)))
	}
}

func (d *Dispatcher) loginFailed(msg string) Handler {
	return func(protocol.ResponseFrame) {
		d.out.Server(msg)
		d.session.LoginFailed()
		d.repaintStatus()
	}
}

func (d *Dispatcher) loginSuccess(protocol.ResponseFrame) {
	d.out.Server("welcome to simple net-based game")
	d.session.LoginSucceeded()
	d.repaintStatus()
}

func (d *Dispatcher) friendAccepted(frame protocol.ResponseFrame) {
	d.out.Server(fmt.Sprintf("friend %s accept your invitation", friendName(frame)))
	d.session.EnterBattle()
	d.repaintStatus()
}

func (d *Dispatcher) battleDisbanded(protocol.ResponseFrame) {
	d.out.Server("battle is disbanded")
	d.session.LeaveBattle()
	d.repaintStatus()
}

func (d *Dispatcher) youAreDead(protocol.ResponseFrame) {
	d.out.Server("you're dead")
	d.session.Killed()
	d.repaintStatus()
}

// friendName returns the friend field with everything outside printable
// ASCII dropped, so the server cannot inject terminal escapes
func friendName(frame protocol.ResponseFrame) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e {
			return -1
		}
		return r
	}, frame.Friend())
}
