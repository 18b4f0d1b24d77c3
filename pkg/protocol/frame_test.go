package protocol_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/omochice/netbattle/pkg/protocol"
)

func TestFrameSizes(t *testing.T) {
	if got := binary.Size(protocol.RequestFrame{}); got != protocol.RequestSize {
		t.Errorf("binary.Size(RequestFrame) = %d, want %d", got, protocol.RequestSize)
	}
	if got := binary.Size(protocol.ResponseFrame{}); got != protocol.ResponseSize {
		t.Errorf("binary.Size(ResponseFrame) = %d, want %d", got, protocol.ResponseSize)
	}
}

func TestRequestFrame_Encode(t *testing.T) {
	tests := []struct {
		name    string
		frame   protocol.RequestFrame
		command int32
		user    string
		friend  string
	}{
		{
			name:    "login carries user name",
			frame:   protocol.NewLogin("alice"),
			command: 0,
			user:    "alice",
		},
		{
			name:    "launch battle carries friend name",
			frame:   protocol.NewLaunchBattle("carol"),
			command: 3,
			friend:  "carol",
		},
		{
			name:    "bare command",
			frame:   protocol.NewCommand(protocol.CommandLogout),
			command: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.frame.Encode()
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if len(data) != protocol.RequestSize {
				t.Fatalf("Encode() length = %d, want %d", len(data), protocol.RequestSize)
			}
			if got := int32(binary.LittleEndian.Uint32(data[:4])); got != tt.command {
				t.Errorf("command field = %d, want %d", got, tt.command)
			}
			user := data[4 : 4+protocol.UserNameSize]
			if got := string(bytes.TrimRight(user, "\x00")); got != tt.user {
				t.Errorf("user_name field = %q, want %q", got, tt.user)
			}
			friend := data[4+protocol.UserNameSize:]
			if got := string(bytes.TrimRight(friend, "\x00")); got != tt.friend {
				t.Errorf("friend_name field = %q, want %q", got, tt.friend)
			}
		})
	}
}

func TestRequestFrame_RoundTrip(t *testing.T) {
	names := []string{"", "bob", "a name with spaces", string(bytes.Repeat([]byte("x"), protocol.UserNameSize-1))}

	for _, name := range names {
		original := protocol.NewLogin(name)
		protocol.PutString(original.FriendName[:], name)

		encoded, err := original.Encode()
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}

		var decoded protocol.RequestFrame
		if err := decoded.Decode(encoded); err != nil {
			t.Fatalf("Decode failed: %v", err)
		}

		if decoded != original {
			t.Errorf("round trip mismatch for %q: got %+v, want %+v", name, decoded, original)
		}
		if decoded.User() != name || decoded.Friend() != name {
			t.Errorf("User()/Friend() = %q/%q, want %q", decoded.User(), decoded.Friend(), name)
		}
	}
}

func TestResponseFrame_RoundTrip(t *testing.T) {
	original := protocol.NewResponse(protocol.MessageInviteToBattle, "dave")
	for i := range original.Battle {
		original.Battle[i] = byte(i * 7)
	}

	encoded, err := original.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(encoded) != protocol.ResponseSize {
		t.Fatalf("Encode() length = %d, want %d", len(encoded), protocol.ResponseSize)
	}

	var decoded protocol.ResponseFrame
	if err := decoded.Decode(encoded); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded != original {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, original)
	}
	if decoded.Friend() != "dave" {
		t.Errorf("Friend() = %q, want %q", decoded.Friend(), "dave")
	}
}

func TestResponseFrame_DecodeWrongSize(t *testing.T) {
	var f protocol.ResponseFrame
	if err := f.Decode(make([]byte, protocol.ResponseSize-1)); err == nil {
		t.Error("expected error decoding a short frame")
	}
	if err := f.Decode(make([]byte, protocol.ResponseSize+1)); err == nil {
		t.Error("expected error decoding a long frame")
	}
}

func TestPutString_Truncates(t *testing.T) {
	buf := []byte("garbage!")
	protocol.PutString(buf, "abcdefghijk")

	if got := protocol.GetString(buf); got != "abcdefg" {
		t.Errorf("GetString() = %q, want %q", got, "abcdefg")
	}
	if buf[len(buf)-1] != 0 {
		t.Error("last byte should be zero")
	}
}

func TestGetString_Unterminated(t *testing.T) {
	if got := protocol.GetString([]byte("full")); got != "full" {
		t.Errorf("GetString() = %q, want %q", got, "full")
	}
}

func TestMessage_String(t *testing.T) {
	tests := []struct {
		name string
		msg  protocol.Message
		want string
	}{
		{"login success", protocol.MessageLoginSuccess, "LOGIN_SUCCESS"},
		{"duplicate id", protocol.MessageLoginFailDupUserID, "LOGIN_FAIL_DUP_USERID"},
		{"dead", protocol.MessageYouAreDead, "YOU_ARE_DEAD"},
		{"unknown", protocol.Message(99), "UNKNOWN(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.msg.String(); got != tt.want {
				t.Errorf("Message.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMessages_AllValid(t *testing.T) {
	msgs := protocol.Messages()
	if len(msgs) != 14 {
		t.Fatalf("Messages() returned %d kinds, want 14", len(msgs))
	}
	for i, m := range msgs {
		if int32(m) != int32(i) {
			t.Errorf("Messages()[%d] = %d, want wire value %d", i, m, i)
		}
		if !m.Valid() {
			t.Errorf("%v should be valid", m)
		}
	}
	if protocol.Message(-1).Valid() || protocol.Message(14).Valid() {
		t.Error("out of range kinds should not be valid")
	}
}

func TestCommand_String(t *testing.T) {
	tests := []struct {
		cmd  protocol.Command
		want string
	}{
		{protocol.CommandUserLogin, "USER_LOGIN"},
		{protocol.CommandLaunchBattle, "LAUNCH_BATTLE"},
		{protocol.CommandUserQuit, "USER_QUIT"},
		{protocol.CommandLogout, "LOGOUT"},
		{protocol.Command(42), "UNKNOWN(42)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.cmd.String(); got != tt.want {
				t.Errorf("Command.String() = %v, want %v", got, tt.want)
			}
		})
	}
}
