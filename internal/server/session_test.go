package server

import (
	"bufio"
	"encoding/json"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/config"
	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/game"
	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/protocol"
)

// Timing values are shortened once for the whole package. A session
// goroutine can outlive the test that dialed it, so the values must
// never be written again after this point.
func TestMain(m *testing.M) {
	game.BroadcastDebounce = 10 * time.Millisecond
	game.RateLimitPenalty = 5 * time.Millisecond
	os.Exit(m.Run())
}

// dial wires a fresh connection into the server's handler and returns
// the client side.
func dial(t *testing.T, srv *Server) (net.Conn, *bufio.Reader) {
	t.Helper()
	clientSide, serverSide := net.Pipe()
	go srv.handleConn(serverSide)
	t.Cleanup(func() { clientSide.Close() })
	return clientSide, bufio.NewReader(clientSide)
}

func newTestServer() *Server {
	mgr := game.NewGameManager(nil, nil)
	return New(&config.Config{GameHost: "127.0.0.1", GamePort: "0"}, mgr)
}

func send(t *testing.T, conn net.Conn, frame interface{}) {
	t.Helper()
	b, err := protocol.Encode(frame)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	if _, err := conn.Write(b); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func sendRaw(t *testing.T, conn net.Conn, line string) {
	t.Helper()
	conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	if _, err := conn.Write([]byte(line)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func recv(t *testing.T, conn net.Conn, r *bufio.Reader) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := r.ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var frame map[string]interface{}
	if err := json.Unmarshal([]byte(line), &frame); err != nil {
		t.Fatalf("bad frame %q: %v", line, err)
	}
	return frame
}

// recvType reads frames until one of the wanted type arrives.
func recvType(t *testing.T, conn net.Conn, r *bufio.Reader, frameType string) map[string]interface{} {
	t.Helper()
	for i := 0; i < 20; i++ {
		frame := recv(t, conn, r)
		if protocol.FrameType(frame) == frameType {
			return frame
		}
	}
	t.Fatalf("no %q frame", frameType)
	return nil
}

func expectClosed(t *testing.T, conn net.Conn, r *bufio.Reader) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if line, err := r.ReadString('\n'); err == nil {
		t.Fatalf("connection should be closed, read %q", line)
	}
}

func TestLoginOK(t *testing.T) {
	srv := newTestServer()
	conn, r := dial(t, srv)

	sendRaw(t, conn, `{"type":"login","name":"A"}`+"\n")
	frame := recv(t, conn, r)
	if protocol.FrameType(frame) != protocol.TypeLoginOK {
		t.Fatalf("first frame = %v, want login_ok", frame)
	}
	users := frame["users"].([]interface{})
	if len(users) != 1 || users[0] != "A" {
		t.Errorf("users = %v, want [A]", users)
	}
}

func TestSecondClientSeesBoth(t *testing.T) {
	srv := newTestServer()

	connA, rA := dial(t, srv)
	sendRaw(t, connA, `{"type":"login","name":"A"}`+"\n")
	recvType(t, connA, rA, protocol.TypeLoginOK)

	connB, rB := dial(t, srv)
	sendRaw(t, connB, `{"type":"login","name":"B"}`+"\n")
	ok := recvType(t, connB, rB, protocol.TypeLoginOK)
	users := ok["users"].([]interface{})
	if len(users) != 2 {
		t.Errorf("users = %v, want both names", users)
	}

	list := recvType(t, connA, rA, protocol.TypeUserList)
	if users := list["users"].([]interface{}); len(users) != 2 {
		t.Errorf("A's user_list = %v, want both names", users)
	}
}

func TestDuplicateNameRejected(t *testing.T) {
	srv := newTestServer()

	connA, rA := dial(t, srv)
	sendRaw(t, connA, `{"type":"login","name":"A"}`+"\n")
	recvType(t, connA, rA, protocol.TypeLoginOK)

	connB, rB := dial(t, srv)
	sendRaw(t, connB, `{"type":"login","name":"A"}`+"\n")
	frame := recv(t, connB, rB)
	if frame["type"] != "error" || frame["msg"] != "Name already in use" {
		t.Errorf("frame = %v", frame)
	}
	expectClosed(t, connB, rB)
}

func TestFirstFrameMustBeLogin(t *testing.T) {
	srv := newTestServer()
	conn, r := dial(t, srv)

	sendRaw(t, conn, `{"type":"move","x":1,"y":1}`+"\n")
	frame := recv(t, conn, r)
	if frame["msg"] != "Must login first" {
		t.Errorf("frame = %v", frame)
	}
	expectClosed(t, conn, r)
}

func TestMalformedFrameCloses(t *testing.T) {
	srv := newTestServer()
	conn, r := dial(t, srv)

	sendRaw(t, conn, "this is not json\n")
	expectClosed(t, conn, r)
}

func TestUnknownTypeError(t *testing.T) {
	srv := newTestServer()
	conn, r := dial(t, srv)

	sendRaw(t, conn, `{"type":"login","name":"A"}`+"\n")
	recvType(t, conn, r, protocol.TypeLoginOK)

	sendRaw(t, conn, `{"type":"dance"}`+"\n")
	frame := recvType(t, conn, r, protocol.TypeError)
	if frame["msg"] != "unknown type" {
		t.Errorf("msg = %v", frame["msg"])
	}
}

// A well-formed frame with no "type" on an authenticated connection is
// treated as an unknown type; the connection stays open.
func TestMissingTypeAfterLogin(t *testing.T) {
	srv := newTestServer()
	conn, r := dial(t, srv)

	sendRaw(t, conn, `{"type":"login","name":"A"}`+"\n")
	recvType(t, conn, r, protocol.TypeLoginOK)

	sendRaw(t, conn, `{"name":"B"}`+"\n")
	frame := recvType(t, conn, r, protocol.TypeError)
	if frame["msg"] != "unknown type" {
		t.Errorf("msg = %v", frame["msg"])
	}

	sendRaw(t, conn, `{"type":"move","x":5,"y":5}`+"\n")
	frame = recvType(t, conn, r, protocol.TypeError)
	if frame["msg"] != "Not in a match" {
		t.Errorf("connection should still dispatch, msg = %v", frame["msg"])
	}
}

func TestMoveWithoutMatch(t *testing.T) {
	srv := newTestServer()
	conn, r := dial(t, srv)

	sendRaw(t, conn, `{"type":"login","name":"A"}`+"\n")
	recvType(t, conn, r, protocol.TypeLoginOK)

	sendRaw(t, conn, `{"type":"move","x":5,"y":5}`+"\n")
	frame := recvType(t, conn, r, protocol.TypeError)
	if frame["msg"] != "Not in a match" {
		t.Errorf("msg = %v", frame["msg"])
	}
}

func TestFractionalCoordsRejected(t *testing.T) {
	srv := newTestServer()

	connA, rA := dial(t, srv)
	sendRaw(t, connA, `{"type":"login","name":"A"}`+"\n")
	recvType(t, connA, rA, protocol.TypeLoginOK)

	connB, rB := dial(t, srv)
	sendRaw(t, connB, `{"type":"login","name":"B"}`+"\n")
	recvType(t, connB, rB, protocol.TypeLoginOK)

	sendRaw(t, connA, `{"type":"challenge","opponent":"B"}`+"\n")
	recvType(t, connB, rB, protocol.TypeInvite)
	sendRaw(t, connB, `{"type":"accept","opponent":"A"}`+"\n")
	recvType(t, connA, rA, protocol.TypeYourTurn)

	sendRaw(t, connA, `{"type":"move","x":5.5,"y":1}`+"\n")
	frame := recvType(t, connA, rA, protocol.TypeError)
	if msg, _ := frame["msg"].(string); !strings.HasPrefix(msg, "Invalid coordinates") {
		t.Errorf("msg = %v", frame["msg"])
	}
}

func TestChallengeAcceptOverWire(t *testing.T) {
	srv := newTestServer()

	connA, rA := dial(t, srv)
	sendRaw(t, connA, `{"type":"login","name":"A"}`+"\n")
	recvType(t, connA, rA, protocol.TypeLoginOK)

	connB, rB := dial(t, srv)
	sendRaw(t, connB, `{"type":"login","name":"B"}`+"\n")
	recvType(t, connB, rB, protocol.TypeLoginOK)

	sendRaw(t, connA, `{"type":"challenge","opponent":"B"}`+"\n")
	invite := recvType(t, connB, rB, protocol.TypeInvite)
	if invite["from"] != "A" {
		t.Errorf("invite = %v", invite)
	}
	recvType(t, connA, rA, protocol.TypeChallengeSent)

	sendRaw(t, connB, `{"type":"accept","opponent":"A"}`+"\n")
	startA := recvType(t, connA, rA, protocol.TypeMatchStart)
	if startA["you"] != "X" || startA["size"] != float64(15) {
		t.Errorf("A match_start = %v", startA)
	}
	startB := recvType(t, connB, rB, protocol.TypeMatchStart)
	if startB["you"] != "O" {
		t.Errorf("B match_start = %v", startB)
	}
	recvType(t, connA, rA, protocol.TypeYourTurn)

	sendRaw(t, connA, `{"type":"move","x":7,"y":7}`+"\n")
	ok := recvType(t, connA, rA, protocol.TypeMoveOK)
	if ok["x"] != float64(7) || ok["symbol"] != "X" {
		t.Errorf("move_ok = %v", ok)
	}
	opp := recvType(t, connB, rB, protocol.TypeOpponentMove)
	if opp["x"] != float64(7) || opp["y"] != float64(7) {
		t.Errorf("opponent_move = %v", opp)
	}
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer()
	conn, r := dial(t, srv)

	sendRaw(t, conn, `{"type":"login","name":"A"}`+"\n")
	recvType(t, conn, r, protocol.TypeLoginOK)

	// The login frame counted as one arrival; the 19th rapid frame
	// after it fills the window.
	var sawLimit bool
	for i := 0; i < game.RateLimitRequests-1; i++ {
		sendRaw(t, conn, `{"type":"dance"}`+"\n")
		frame := recvType(t, conn, r, protocol.TypeError)
		if frame["msg"] == "Rate limit exceeded. Please slow down." {
			sawLimit = true
			break
		}
	}
	if !sawLimit {
		t.Error("rate limit never tripped")
	}
}

func TestChatOverWire(t *testing.T) {
	srv := newTestServer()

	connA, rA := dial(t, srv)
	sendRaw(t, connA, `{"type":"login","name":"A"}`+"\n")
	recvType(t, connA, rA, protocol.TypeLoginOK)

	connB, rB := dial(t, srv)
	sendRaw(t, connB, `{"type":"login","name":"B"}`+"\n")
	recvType(t, connB, rB, protocol.TypeLoginOK)

	sendRaw(t, connA, `{"type":"challenge","opponent":"B"}`+"\n")
	recvType(t, connB, rB, protocol.TypeInvite)
	sendRaw(t, connB, `{"type":"accept","opponent":"A"}`+"\n")
	recvType(t, connA, rA, protocol.TypeMatchStart)
	recvType(t, connB, rB, protocol.TypeMatchStart)

	send(t, connA, map[string]interface{}{"type": "chat", "text": "  hello  "})
	chat := recvType(t, connB, rB, protocol.TypeChat)
	if chat["from"] != "A" || chat["text"] != "hello" {
		t.Errorf("chat = %v", chat)
	}
}

func TestDisconnectForfeitsOverWire(t *testing.T) {
	srv := newTestServer()

	connA, rA := dial(t, srv)
	sendRaw(t, connA, `{"type":"login","name":"A"}`+"\n")
	recvType(t, connA, rA, protocol.TypeLoginOK)

	connB, rB := dial(t, srv)
	sendRaw(t, connB, `{"type":"login","name":"B"}`+"\n")
	recvType(t, connB, rB, protocol.TypeLoginOK)

	sendRaw(t, connA, `{"type":"challenge","opponent":"B"}`+"\n")
	recvType(t, connB, rB, protocol.TypeInvite)
	sendRaw(t, connB, `{"type":"accept","opponent":"A"}`+"\n")
	recvType(t, connB, rB, protocol.TypeMatchStart)

	connA.Close()

	end := recvType(t, connB, rB, protocol.TypeMatchEnd)
	if end["result"] != "win" || end["reason"] != "disconnect" {
		t.Errorf("match_end = %v", end)
	}
}
