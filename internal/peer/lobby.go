package peer

import (
	"fmt"
	"log"
	"sync"

	"github.com/omochice/netbattle/pkg/protocol"
)

// outgoingBuffer is the per-player queue length
const outgoingBuffer = 16

// Player is one connected client. name is empty until login succeeds
type Player struct {
	name      string
	out       chan protocol.ResponseFrame
	battle    *battle
	invitedBy *Player
	gone      bool
}

func newPlayer() *Player {
	return &Player{out: make(chan protocol.ResponseFrame, outgoingBuffer)}
}

type battle struct {
	members map[*Player]bool
}

// Lobby tracks logged-in players and their battles.
// All connections share a single Lobby instance
type Lobby struct {
	mu      sync.Mutex
	players map[string]*Player
	limit   int
}

// NewLobby creates a Lobby admitting at most limit players. A limit of
// zero or less means no limit
func NewLobby(limit int) *Lobby {
	return &Lobby{
		players: make(map[string]*Player),
		limit:   limit,
	}
}

// PlayerCount returns number of logged-in players
func (l *Lobby) PlayerCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.players)
}

// Notify queues resp for the player logged in as name
func (l *Lobby) Notify(name string, resp protocol.ResponseFrame) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.players[name]
	if !ok {
		return fmt.Errorf("player %s is not logged in", name)
	}
	l.push(p, resp)
	return nil
}

// Handle applies one request from p. It returns false when the
// connection should be closed
func (l *Lobby) Handle(p *Player, req protocol.RequestFrame) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch req.Command {
	case protocol.CommandUserQuit:
		log.Printf("User %s quit", p.name)
		l.logout(p)
		return false
	case protocol.CommandUserLogin:
		l.login(p, req.User())
		return true
	}

	if p.name == "" {
		l.send(p, protocol.MessageNotLogin, "")
		return true
	}

	switch req.Command {
	case protocol.CommandLogout:
		log.Printf("User %s logged out", p.name)
		l.logout(p)
	case protocol.CommandLaunchBattle:
		l.launch(p, req.Friend())
	case protocol.CommandInviteUser:
		l.invite(p, req.Friend())
	case protocol.CommandJoinBattle:
		l.join(p)
	case protocol.CommandQuitBattle:
		l.quitBattle(p)
	default:
		log.Printf("Unknown command %v from %s", req.Command, p.name)
	}
	return true
}

// Leave removes p for good. Nothing is queued to p afterwards
func (l *Lobby) Leave(p *Player) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logout(p)
	p.gone = true
}

func (l *Lobby) login(p *Player, name string) {
	if p.name != "" {
		l.send(p, protocol.MessageYouHaveLogined, "")
		return
	}
	// An empty name can never be registered
	if _, taken := l.players[name]; taken || name == "" {
		l.send(p, protocol.MessageLoginFailDupUserID, "")
		return
	}
	if l.limit > 0 && len(l.players) >= l.limit {
		l.send(p, protocol.MessageLoginFailServerLimits, "")
		return
	}

	p.name = name
	l.players[name] = p
	log.Printf("User %s logged in", name)
	l.send(p, protocol.MessageLoginSuccess, "")
}

func (l *Lobby) logout(p *Player) {
	if p.name == "" {
		return
	}
	l.rejectInvitation(p)
	l.leaveBattle(p)
	delete(l.players, p.name)
	p.name = ""
}

func (l *Lobby) launch(p *Player, friend string) {
	if p.battle == nil {
		p.battle = &battle{members: map[*Player]bool{p: true}}
		log.Printf("User %s launched a battle", p.name)
	}
	if friend == "" {
		l.send(p, protocol.MessageBattleInformation, "")
		return
	}
	l.invite(p, friend)
}

func (l *Lobby) invite(p *Player, friend string) {
	if p.battle == nil {
		p.battle = &battle{members: map[*Player]bool{p: true}}
	}

	f, ok := l.players[friend]
	if !ok || f == p {
		l.send(p, protocol.MessageFriendNotLogin, friend)
		return
	}
	if f.battle != nil {
		l.send(p, protocol.MessageFriendAlreadyInBattle, friend)
		return
	}

	f.invitedBy = p
	log.Printf("User %s invited %s", p.name, friend)
	l.send(f, protocol.MessageInviteToBattle, p.name)
}

func (l *Lobby) join(p *Player) {
	inviter := p.invitedBy
	p.invitedBy = nil
	if inviter == nil || inviter.gone || inviter.battle == nil {
		log.Printf("User %s has no invitation to join", p.name)
		return
	}

	if p.battle != inviter.battle {
		l.leaveBattle(p)
	}
	p.battle = inviter.battle
	p.battle.members[p] = true
	log.Printf("User %s joined the battle of %s", p.name, inviter.name)
	l.send(inviter, protocol.MessageFriendAcceptBattle, p.name)
	l.send(p, protocol.MessageFriendAcceptBattle, inviter.name)
}

// quitBattle answers a pending invitation with a rejection, or leaves the
// current battle when there is none
func (l *Lobby) quitBattle(p *Player) {
	if l.rejectInvitation(p) {
		return
	}
	l.leaveBattle(p)
}

func (l *Lobby) rejectInvitation(p *Player) bool {
	inviter := p.invitedBy
	if inviter == nil {
		return false
	}
	p.invitedBy = nil
	l.send(inviter, protocol.MessageFriendRejectBattle, p.name)
	return true
}

func (l *Lobby) leaveBattle(p *Player) {
	b := p.battle
	if b == nil {
		return
	}
	delete(b.members, p)
	p.battle = nil

	for m := range b.members {
		l.send(m, protocol.MessageUserQuitBattle, p.name)
	}
	if len(b.members) < 2 {
		for m := range b.members {
			l.send(m, protocol.MessageBattleDisbanded, "")
			m.battle = nil
		}
	}
}

func (l *Lobby) send(p *Player, msg protocol.Message, friend string) {
	l.push(p, protocol.NewResponse(msg, friend))
}

func (l *Lobby) push(p *Player, resp protocol.ResponseFrame) {
	if p.gone {
		return
	}
	select {
	case p.out <- resp:
	default:
		log.Printf("Outgoing queue full for %s, dropping %v", p.name, resp.Message)
	}
}
