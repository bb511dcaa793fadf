// Package protocol defines the newline-delimited JSON frames exchanged
// with game clients. Every frame is a single JSON object on one line
// with a string "type" field.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Client -> server frame types.
const (
	TypeLogin     = "login"
	TypeChallenge = "challenge"
	TypeAccept    = "accept"
	TypeMove      = "move"
	TypeTimeout   = "timeout"
	TypeChat      = "chat"
)

// Server -> client frame types.
const (
	TypeLoginOK       = "login_ok"
	TypeUserList      = "user_list"
	TypeChallengeSent = "challenge_sent"
	TypeInvite        = "invite"
	TypeMatchStart    = "match_start"
	TypeYourTurn      = "your_turn"
	TypeMoveOK        = "move_ok"
	TypeOpponentMove  = "opponent_move"
	TypeHighlight     = "highlight"
	TypeMatchEnd      = "match_end"
	TypeError         = "error"
)

type LoginOK struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
}

type UserList struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
}

type ChallengeSent struct {
	Type string `json:"type"`
	To   string `json:"to"`
}

type Invite struct {
	Type string `json:"type"`
	From string `json:"from"`
}

type MatchStart struct {
	Type     string `json:"type"`
	You      string `json:"you"`
	Opponent string `json:"opponent"`
	Size     int    `json:"size"`
}

// YourTurn carries the absolute move deadline as unix seconds.
type YourTurn struct {
	Type     string `json:"type"`
	Deadline int64  `json:"deadline"`
}

type Move struct {
	Type   string `json:"type"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Symbol string `json:"symbol"`
}

type Highlight struct {
	Type   string   `json:"type"`
	Cells  [][2]int `json:"cells"`
	Winner string   `json:"winner"`
}

type MatchEnd struct {
	Type   string `json:"type"`
	Result string `json:"result"`
	Reason string `json:"reason"`
	Winner string `json:"winner"`
}

type Chat struct {
	Type string `json:"type"`
	From string `json:"from"`
	Text string `json:"text"`
}

type Error struct {
	Type string `json:"type"`
	Msg  string `json:"msg"`
}

func NewLoginOK(users []string) LoginOK         { return LoginOK{Type: TypeLoginOK, Users: users} }
func NewUserList(users []string) UserList       { return UserList{Type: TypeUserList, Users: users} }
func NewChallengeSent(to string) ChallengeSent  { return ChallengeSent{Type: TypeChallengeSent, To: to} }
func NewInvite(from string) Invite              { return Invite{Type: TypeInvite, From: from} }
func NewYourTurn(deadline int64) YourTurn       { return YourTurn{Type: TypeYourTurn, Deadline: deadline} }
func NewChat(from, text string) Chat            { return Chat{Type: TypeChat, From: from, Text: text} }
func NewError(msg string) Error                 { return Error{Type: TypeError, Msg: msg} }

func NewMatchStart(you, opponent string, size int) MatchStart {
	return MatchStart{Type: TypeMatchStart, You: you, Opponent: opponent, Size: size}
}

func NewMoveOK(x, y int, symbol string) Move {
	return Move{Type: TypeMoveOK, X: x, Y: y, Symbol: symbol}
}

func NewOpponentMove(x, y int, symbol string) Move {
	return Move{Type: TypeOpponentMove, X: x, Y: y, Symbol: symbol}
}

func NewHighlight(cells [][2]int, winner string) Highlight {
	return Highlight{Type: TypeHighlight, Cells: cells, Winner: winner}
}

func NewMatchEnd(result, reason, winner string) MatchEnd {
	return MatchEnd{Type: TypeMatchEnd, Result: result, Reason: reason, Winner: winner}
}

// Encode marshals a frame and appends the line terminator.
func Encode(frame interface{}) ([]byte, error) {
	b, err := json.Marshal(frame)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// MustEncode is Encode for the typed frames above, whose marshalling
// cannot fail.
func MustEncode(frame interface{}) []byte {
	b, err := Encode(frame)
	if err != nil {
		panic(fmt.Sprintf("protocol: encode %T: %v", frame, err))
	}
	return b
}

// Decode parses one inbound line. Clients are not trusted to send
// well-typed frames, so fields stay loose until each handler coerces
// what it needs.
func Decode(line []byte) (map[string]interface{}, error) {
	var frame map[string]interface{}
	if err := json.Unmarshal(line, &frame); err != nil {
		return nil, err
	}
	return frame, nil
}

// FrameType extracts the "type" field, empty if absent or not a string.
func FrameType(frame map[string]interface{}) string {
	t, _ := frame["type"].(string)
	return t
}

// StringField extracts a string field, empty if absent or mistyped.
func StringField(frame map[string]interface{}, key string) string {
	s, _ := frame[key].(string)
	return s
}
