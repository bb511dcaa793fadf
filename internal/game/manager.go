package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/history"
	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/models"
	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/protocol"
	"github.com/redis/go-redis/v9"
)

// inviteKey identifies one pending challenge by its ordered pair.
type inviteKey struct {
	From string
	To   string
}

// GameManager owns the lobby: the connected-name registry, the pending
// challenges and the live match registry. One RWMutex guards all three;
// per-match state has its own lock and is never touched under mu.
type GameManager struct {
	clients map[string]*Client
	invites map[inviteKey]time.Time
	matches map[string]*Match

	store *history.Store
	rdb   *redis.Client
	mu    sync.RWMutex

	// broadcast coalescing state
	broadcastPending bool
	lastUserList     []string
}

// Manager is the global game manager instance.
var Manager *GameManager

// InitializeManager initializes the global game manager.
func InitializeManager(store *history.Store, rdb *redis.Client) {
	Manager = NewGameManager(store, rdb)
}

// NewGameManager creates a new game manager.
func NewGameManager(store *history.Store, rdb *redis.Client) *GameManager {
	return &GameManager{
		clients: make(map[string]*Client),
		invites: make(map[inviteKey]time.Time),
		matches: make(map[string]*Match),
		store:   store,
		rdb:     rdb,
	}
}

// generateMatchID derives a registry-unique id from the clock. Caller
// holds mu.
func (gm *GameManager) generateMatchID() string {
	ms := time.Now().UnixMilli()
	id := fmt.Sprintf("M%d", ms)
	for _, taken := gm.matches[id]; taken; _, taken = gm.matches[id] {
		ms++
		id = fmt.Sprintf("M%d", ms)
	}
	return id
}

// Login registers a display name and returns its Client handle.
func (gm *GameManager) Login(name string) (*Client, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > MaxNameLen {
		return nil, ErrInvalidName
	}

	gm.mu.Lock()
	if _, exists := gm.clients[name]; exists {
		gm.mu.Unlock()
		return nil, ErrNameInUse
	}
	client := NewClient(name)
	gm.clients[name] = client
	gm.mu.Unlock()

	log.Printf("[GAME] %s logged in (%d online)", name, gm.ClientCount())
	gm.RequestBroadcast()
	return client, nil
}

// Logout removes a client, drops every invite involving it and
// forfeits its match if one is live.
func (gm *GameManager) Logout(client *Client) {
	gm.mu.Lock()
	if gm.clients[client.Name] != client {
		// Already logged out, or the name was reused after a close.
		gm.mu.Unlock()
		client.Close()
		return
	}
	delete(gm.clients, client.Name)
	for key := range gm.invites {
		if key.From == client.Name || key.To == client.Name {
			delete(gm.invites, key)
		}
	}
	var match *Match
	if client.matchID != "" {
		match = gm.matches[client.matchID]
	}
	gm.mu.Unlock()

	client.Close()
	if match != nil {
		match.OnDisconnect(client.Name)
	}
	log.Printf("[GAME] %s logged out", client.Name)
	gm.RequestBroadcast()
}

// Challenge records a pending invite from a free client to another
// free client and notifies both sides.
func (gm *GameManager) Challenge(from *Client, targetName string) error {
	gm.mu.Lock()
	target, online := gm.clients[targetName]
	if !online {
		gm.mu.Unlock()
		return ErrOpponentNotFound
	}
	if targetName == from.Name {
		gm.mu.Unlock()
		return ErrSelfChallenge
	}
	if from.matchID != "" {
		gm.mu.Unlock()
		return ErrAlreadyInMatch
	}
	if target.matchID != "" {
		gm.mu.Unlock()
		return ErrOpponentInMatch
	}
	key := inviteKey{From: from.Name, To: targetName}
	if _, dup := gm.invites[key]; dup {
		gm.mu.Unlock()
		return ErrChallengeAlreadySent
	}
	gm.invites[key] = time.Now()
	gm.mu.Unlock()

	target.Send(protocol.MustEncode(protocol.NewInvite(from.Name)))
	from.Send(protocol.MustEncode(protocol.NewChallengeSent(targetName)))
	log.Printf("[GAME] %s challenged %s", from.Name, targetName)
	return nil
}

// Accept consumes a pending invite from challengerName and starts the
// match with the challenger as X. All invites involving either player
// are dropped atomically with the registration.
func (gm *GameManager) Accept(actor *Client, challengerName string) error {
	gm.mu.Lock()
	if _, pending := gm.invites[inviteKey{From: challengerName, To: actor.Name}]; !pending {
		gm.mu.Unlock()
		return ErrNoInvite
	}
	challenger, online := gm.clients[challengerName]
	if !online {
		gm.mu.Unlock()
		return ErrOpponentOffline
	}
	if actor.matchID != "" || challenger.matchID != "" {
		gm.mu.Unlock()
		return ErrSomeoneInMatch
	}

	for key := range gm.invites {
		if key.From == actor.Name || key.To == actor.Name ||
			key.From == challengerName || key.To == challengerName {
			delete(gm.invites, key)
		}
	}

	match := newMatch(gm.generateMatchID(), challenger, actor, gm)
	gm.matches[match.ID] = match
	challenger.matchID = match.ID
	actor.matchID = match.ID
	gm.mu.Unlock()

	match.Start()
	return nil
}

// MatchForClient resolves the live match a client belongs to.
func (gm *GameManager) MatchForClient(client *Client) *Match {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	if client.matchID == "" {
		return nil
	}
	return gm.matches[client.matchID]
}

// removeMatch drops a finished match from the registry and releases
// both players' memberships. Called by Match.complete, never under the
// match lock.
func (gm *GameManager) removeMatch(m *Match) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	delete(gm.matches, m.ID)
	if m.PlayerX.matchID == m.ID {
		m.PlayerX.matchID = ""
	}
	if m.PlayerO.matchID == m.ID {
		m.PlayerO.matchID = ""
	}
}

// saveHistory hands a finished record to the history store.
func (gm *GameManager) saveHistory(rec models.MatchRecord) {
	if gm.store == nil {
		return
	}
	if err := gm.store.Save(rec); err != nil {
		log.Printf("[DB] Failed to save match %s: %v", rec.ID, err)
	}
}

// RequestBroadcast schedules a coalesced user_list fan-out. Changes
// within the debounce window collapse into one send, and a list equal
// to the last one sent is suppressed.
func (gm *GameManager) RequestBroadcast() {
	gm.mu.Lock()
	if gm.broadcastPending {
		gm.mu.Unlock()
		return
	}
	gm.broadcastPending = true
	gm.mu.Unlock()

	time.AfterFunc(BroadcastDebounce, gm.broadcastUserList)
}

func (gm *GameManager) broadcastUserList() {
	gm.mu.Lock()
	gm.broadcastPending = false

	users := make([]string, 0, len(gm.clients))
	for name := range gm.clients {
		users = append(users, name)
	}
	sort.Strings(users)

	if equalStrings(users, gm.lastUserList) {
		gm.mu.Unlock()
		return
	}
	gm.lastUserList = users

	recipients := make([]*Client, 0, len(gm.clients))
	for _, c := range gm.clients {
		recipients = append(recipients, c)
	}
	gm.mu.Unlock()

	frame := protocol.MustEncode(protocol.NewUserList(users))
	for _, c := range recipients {
		c.Send(frame)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Users returns the sorted connected-name list.
func (gm *GameManager) Users() []string {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	users := make([]string, 0, len(gm.clients))
	for name := range gm.clients {
		users = append(users, name)
	}
	sort.Strings(users)
	return users
}

// ClientCount returns the number of connected clients.
func (gm *GameManager) ClientCount() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.clients)
}

// LiveMatches lists summaries of every registered match.
func (gm *GameManager) LiveMatches() []MatchSummary {
	gm.mu.RLock()
	matches := make([]*Match, 0, len(gm.matches))
	for _, m := range gm.matches {
		matches = append(matches, m)
	}
	gm.mu.RUnlock()

	out := make([]MatchSummary, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MatchSnapshot fetches a consistent board view for one live match.
func (gm *GameManager) MatchSnapshot(id string) (MatchSnapshot, bool) {
	gm.mu.RLock()
	m, ok := gm.matches[id]
	gm.mu.RUnlock()
	if !ok {
		return MatchSnapshot{}, false
	}
	return m.Snapshot(), true
}

// publishMatchEvent pushes one event to the match_events channel for
// live watchers. Best-effort: gameplay never depends on Redis.
func (gm *GameManager) publishMatchEvent(eventType, matchID string, fields map[string]interface{}) {
	if gm.rdb == nil {
		return
	}
	payload := map[string]interface{}{"type": eventType, "match_id": matchID}
	for k, v := range fields {
		payload[k] = v
	}
	b, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[GAME] marshal %s event failed: %v", eventType, err)
		return
	}
	if err := gm.rdb.Publish(context.Background(), "match_events", b).Err(); err != nil {
		log.Printf("[GAME] publish %s event failed: %v", eventType, err)
	}
}

// Shutdown closes every connected client. Sessions observe the close,
// log out and tear the registries down; live matches forfeit on the
// first disconnect and their records persist.
func (gm *GameManager) Shutdown() {
	gm.mu.RLock()
	clients := make([]*Client, 0, len(gm.clients))
	for _, c := range gm.clients {
		clients = append(clients, c)
	}
	gm.mu.RUnlock()

	log.Printf("[GAME] shutting down, closing %d clients", len(clients))
	for _, c := range clients {
		c.Close()
	}
}
