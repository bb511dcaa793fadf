package server

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"math"
	"net"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/game"
	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/protocol"
)

const writeTimeout = 10 * time.Second

var errUnknownType = errors.New("unknown type")

func badCoords(x, y interface{}) error {
	return fmt.Errorf("Invalid coordinates: x=%v, y=%v", x, y)
}

// session is the per-connection protocol state machine. It moves
// through three states: unauthenticated (only login accepted),
// authenticated (frames dispatched to lobby and match operations) and
// closing (logout and socket teardown).
type session struct {
	conn   net.Conn
	reader *bufio.Reader
	mgr    *game.GameManager

	client *game.Client

	// recent holds the last RateLimitRequests inbound frame arrival
	// times, oldest first.
	recent []time.Time
}

func newSession(conn net.Conn, mgr *game.GameManager) *session {
	return &session{
		conn:   conn,
		reader: bufio.NewReader(conn),
		mgr:    mgr,
	}
}

func (s *session) run() {
	defer s.conn.Close()

	if !s.login() {
		return
	}
	defer s.mgr.Logout(s.client)

	go s.writePump()

	for {
		frame, ok := s.readFrame()
		if !ok {
			return
		}

		if s.rateLimited(time.Now()) {
			s.client.Send(protocol.MustEncode(protocol.NewError("Rate limit exceeded. Please slow down.")))
			time.Sleep(game.RateLimitPenalty)
			continue
		}

		s.dispatch(frame)
	}
}

// login handles the unauthenticated state: the first frame must be a
// well-formed login, anything else closes the connection.
func (s *session) login() bool {
	frame, ok := s.readFrame()
	if !ok {
		return false
	}
	s.rateLimited(time.Now())

	if protocol.FrameType(frame) != protocol.TypeLogin {
		s.writeDirect(protocol.MustEncode(protocol.NewError("Must login first")))
		return false
	}

	name := protocol.StringField(frame, "name")
	client, err := s.mgr.Login(name)
	if err != nil {
		s.writeDirect(protocol.MustEncode(protocol.NewError(err.Error())))
		return false
	}
	s.client = client

	// Queued before the write pump starts, so login_ok is the first
	// frame on the wire.
	client.Send(protocol.MustEncode(protocol.NewLoginOK(s.mgr.Users())))
	return true
}

// readFrame reads and parses one line. A transport error or a
// malformed frame ends the session with nothing further written.
func (s *session) readFrame() (map[string]interface{}, bool) {
	line, err := s.reader.ReadString('\n')
	if err != nil {
		return nil, false
	}
	line = strings.TrimRight(line, "\r\n")
	if !utf8.ValidString(line) {
		log.Printf("[TCP] %s: non-UTF-8 frame, closing", s.conn.RemoteAddr())
		return nil, false
	}
	frame, err := protocol.Decode([]byte(line))
	if err != nil {
		log.Printf("[TCP] %s: bad frame, closing: %v", s.conn.RemoteAddr(), err)
		return nil, false
	}
	return frame, true
}

// dispatch routes one authenticated frame by type.
func (s *session) dispatch(frame map[string]interface{}) {
	var err error
	switch protocol.FrameType(frame) {
	case protocol.TypeChallenge:
		err = s.mgr.Challenge(s.client, protocol.StringField(frame, "opponent"))

	case protocol.TypeAccept:
		err = s.mgr.Accept(s.client, protocol.StringField(frame, "opponent"))

	case protocol.TypeMove:
		err = s.handleMove(frame)

	case protocol.TypeTimeout:
		if m := s.mgr.MatchForClient(s.client); m != nil {
			err = m.OnClientTimeout(s.client.Name)
		} else {
			err = game.ErrNotInMatch
		}

	case protocol.TypeChat:
		text := strings.TrimSpace(protocol.StringField(frame, "text"))
		if text == "" || len(text) > game.MaxChatLen {
			return // silent drop
		}
		if m := s.mgr.MatchForClient(s.client); m != nil {
			err = m.RelayChat(s.client.Name, text)
		} else {
			err = game.ErrNotInMatch
		}

	default:
		err = errUnknownType
	}

	if err != nil {
		s.client.Send(protocol.MustEncode(protocol.NewError(err.Error())))
	}
}

func (s *session) handleMove(frame map[string]interface{}) error {
	m := s.mgr.MatchForClient(s.client)
	if m == nil {
		return game.ErrNotInMatch
	}
	x, okX := intField(frame, "x")
	y, okY := intField(frame, "y")
	if !okX || !okY {
		return badCoords(frame["x"], frame["y"])
	}
	return m.ApplyMove(s.client.Name, x, y)
}

// intField coerces a JSON number to an int, rejecting fractions.
func intField(frame map[string]interface{}, key string) (int, bool) {
	f, ok := frame[key].(float64)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// rateLimited records one frame arrival and reports whether the
// connection has exceeded RateLimitRequests within RateLimitWindow.
// Advisory only; the connection stays open.
func (s *session) rateLimited(now time.Time) bool {
	s.recent = append(s.recent, now)
	if len(s.recent) > game.RateLimitRequests {
		s.recent = s.recent[1:]
	}
	return len(s.recent) == game.RateLimitRequests &&
		now.Sub(s.recent[0]) < game.RateLimitWindow
}

// writePump drains the client's outbound queue onto the socket. Frame
// order on one connection is the enqueue order. A write error or the
// client closing ends the pump and the connection with it.
func (s *session) writePump() {
	for {
		select {
		case frame := <-s.client.Outbound():
			if !s.writeDirect(frame) {
				s.conn.Close()
				return
			}
		case <-s.client.Done():
			s.conn.Close()
			return
		}
	}
}

// writeDirect writes one frame, used before the pump starts and by it.
func (s *session) writeDirect(frame []byte) bool {
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := s.conn.Write(frame); err != nil {
		return false
	}
	return true
}
