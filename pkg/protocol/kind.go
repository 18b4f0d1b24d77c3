package protocol

import "fmt"

// Command identifies a client request
type Command int32

// Commands in wire order
const (
	CommandUserLogin Command = iota
	CommandLogout
	CommandUserQuit
	CommandLaunchBattle
	CommandQuitBattle
	CommandInviteUser
	CommandJoinBattle
)

var commandNames = map[Command]string{
	CommandUserLogin:    "USER_LOGIN",
	CommandLogout:       "LOGOUT",
	CommandUserQuit:     "USER_QUIT",
	CommandLaunchBattle: "LAUNCH_BATTLE",
	CommandQuitBattle:   "QUIT_BATTLE",
	CommandInviteUser:   "INVITE_USER",
	CommandJoinBattle:   "JOIN_BATTLE",
}

// String returns the wire name of the command
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int32(c))
}

// Valid reports whether c is a defined command
func (c Command) Valid() bool {
	_, ok := commandNames[c]
	return ok
}

// Message identifies a server response or notification
type Message int32

// Messages in wire order
const (
	MessageLoginSuccess Message = iota
	MessageNotLogin
	MessageLoginFailDupUserID
	MessageLoginFailServerLimits
	MessageYouHaveLogined
	MessageFriendAcceptBattle
	MessageFriendRejectBattle
	MessageFriendNotLogin
	MessageFriendAlreadyInBattle
	MessageInviteToBattle
	MessageUserQuitBattle
	MessageBattleDisbanded
	MessageBattleInformation
	MessageYouAreDead
)

var messageNames = map[Message]string{
	MessageLoginSuccess:          "LOGIN_SUCCESS",
	MessageNotLogin:              "NOT_LOGIN",
	MessageLoginFailDupUserID:    "LOGIN_FAIL_DUP_USERID",
	MessageLoginFailServerLimits: "LOGIN_FAIL_SERVER_LIMITS",
	MessageYouHaveLogined:        "YOU_HAVE_LOGINED",
	MessageFriendAcceptBattle:    "FRIEND_ACCEPT_BATTLE",
	MessageFriendRejectBattle:    "FRIEND_REJECT_BATTLE",
	MessageFriendNotLogin:        "FRIEND_NOT_LOGIN",
	MessageFriendAlreadyInBattle: "FRIEND_ALREADY_IN_BATTLE",
	MessageInviteToBattle:        "INVITE_TO_BATTLE",
	MessageUserQuitBattle:        "USER_QUIT_BATTLE",
	MessageBattleDisbanded:       "BATTLE_DISBANDED",
	MessageBattleInformation:     "BATTLE_INFORMATION",
	MessageYouAreDead:            "YOU_ARE_DEAD",
}

// Messages returns every defined message kind in wire order
func Messages() []Message {
	out := make([]Message, 0, len(messageNames))
	for m := MessageLoginSuccess; m <= MessageYouAreDead; m++ {
		out = append(out, m)
	}
	return out
}

// String returns the wire name of the message
func (m Message) String() string {
	if name, ok := messageNames[m]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int32(m))
}

// Valid reports whether m is a defined message kind
func (m Message) Valid() bool {
	_, ok := messageNames[m]
	return ok
}
