// Package protocol defines the fixed-size binary frames exchanged with the
// game server
package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Field widths shared with the server. Both ends must agree on them exactly:
// frames carry no length prefix
const (
	UserNameSize      = 32
	FriendNameSize    = 32
	BattlePayloadSize = 64
)

// Frame sizes on the wire
const (
	RequestSize  = 4 + UserNameSize + FriendNameSize
	ResponseSize = 4 + FriendNameSize + BattlePayloadSize
)

// ByteOrder is the byte order of every integer field on the wire
var ByteOrder = binary.LittleEndian

// RequestFrame is the client to server frame
type RequestFrame struct {
	Command    Command
	UserName   [UserNameSize]byte
	FriendName [FriendNameSize]byte
}

// ResponseFrame is the server to client frame. Battle is carried verbatim;
// the client does not interpret it
type ResponseFrame struct {
	Message    Message
	FriendName [FriendNameSize]byte
	Battle     [BattlePayloadSize]byte
}

// NewCommand returns a request carrying only a command
func NewCommand(cmd Command) RequestFrame {
	return RequestFrame{Command: cmd}
}

// NewLogin returns a USER_LOGIN request for name
func NewLogin(name string) RequestFrame {
	f := RequestFrame{Command: CommandUserLogin}
	PutString(f.UserName[:], name)
	return f
}

// NewLaunchBattle returns a LAUNCH_BATTLE request inviting friend
func NewLaunchBattle(friend string) RequestFrame {
	f := RequestFrame{Command: CommandLaunchBattle}
	PutString(f.FriendName[:], friend)
	return f
}

// User returns the user name field as a string
func (f *RequestFrame) User() string {
	return GetString(f.UserName[:])
}

// Friend returns the friend name field as a string
func (f *RequestFrame) Friend() string {
	return GetString(f.FriendName[:])
}

// Encode encodes the frame into exactly RequestSize bytes
func (f *RequestFrame) Encode() ([]byte, error) {
	return encode(f, RequestSize)
}

// Decode decodes exactly RequestSize bytes into the frame
func (f *RequestFrame) Decode(data []byte) error {
	return decode(data, f, RequestSize)
}

// NewResponse returns a response of kind msg naming friend
func NewResponse(msg Message, friend string) ResponseFrame {
	f := ResponseFrame{Message: msg}
	PutString(f.FriendName[:], friend)
	return f
}

// Friend returns the friend name field as a string
func (f *ResponseFrame) Friend() string {
	return GetString(f.FriendName[:])
}

// Encode encodes the frame into exactly ResponseSize bytes
func (f *ResponseFrame) Encode() ([]byte, error) {
	return encode(f, ResponseSize)
}

// Decode decodes exactly ResponseSize bytes into the frame
func (f *ResponseFrame) Decode(data []byte) error {
	return decode(data, f, ResponseSize)
}

func encode(v any, size int) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, size))
	if err := binary.Write(buf, ByteOrder, v); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

func decode(data []byte, v any, size int) error {
	if len(data) != size {
		return fmt.Errorf("failed to decode frame: got %d bytes, want %d", len(data), size)
	}
	if err := binary.Read(bytes.NewReader(data), ByteOrder, v); err != nil {
		return fmt.Errorf("failed to decode frame: %w", err)
	}
	return nil
}

// PutString zero-fills dst and copies at most len(dst)-1 bytes of s into it,
// so the field always ends with a zero byte
func PutString(dst []byte, s string) {
	clear(dst)
	if len(dst) == 0 {
		return
	}
	copy(dst[:len(dst)-1], s)
}

// GetString returns the bytes of src up to the first zero byte
func GetString(src []byte) string {
	if i := bytes.IndexByte(src, 0); i >= 0 {
		return string(src[:i])
	}
	return string(src)
}
