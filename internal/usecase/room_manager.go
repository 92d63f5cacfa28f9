package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/kamstrup/intmap"

	"github.com/rocketscienceinc/tetris-backend/internal/apperror"
	"github.com/rocketscienceinc/tetris-backend/internal/entity"
	"github.com/rocketscienceinc/tetris-backend/internal/protocol"
)

const roomCodeSpace = 0x1000000

// Peer is a relay connection that messages can be pushed to.
type Peer interface {
	Send(msg protocol.Message) error
}

type roomRepo interface {
	CreateOrUpdate(ctx context.Context, room *entity.Room) error
	DeleteByCode(ctx context.Context, code string) error
}

type matchRepo interface {
	Create(ctx context.Context, match *entity.Match) error
	AppendUpdate(ctx context.Context, id string, entry entity.JournalEntry) error
}

type client struct {
	id    uint64
	name  string
	index int
	peer  Peer
	room  *room
	left  atomic.Bool
}

type room struct {
	record  *entity.Room
	clients []*client

	// tail is closed once the last reserved turn is over. Turns run the
	// room's deliveries and storage writes one at a time, in the order they
	// were reserved under RoomManager.mu.
	tail chan struct{}
}

func newRoomState(code string) *room {
	tail := make(chan struct{})
	close(tail)

	return &room{record: entity.NewRoom(code), tail: tail}
}

// nextTurn reserves the room's next turn. Callers hold RoomManager.mu while
// reserving, release it, wait on prev and close turn when done.
func (that *room) nextTurn() (<-chan struct{}, chan struct{}) {
	prev, turn := that.tail, make(chan struct{})
	that.tail = turn

	return prev, turn
}

type delivery struct {
	to  *client
	msg protocol.Message
}

// RoomManager groups relay connections into rooms and forwards messages
// between them. It holds no game logic.
type RoomManager struct {
	logger    *slog.Logger
	roomRepo  roomRepo
	matchRepo matchRepo

	capacity     int
	codeAttempts int

	mu      sync.Mutex
	rooms   map[string]*room
	clients *intmap.Map[uint64, *client]
	nextID  uint64
}

func NewRoomManager(logger *slog.Logger, roomRepo roomRepo, matchRepo matchRepo, capacity, codeAttempts int) *RoomManager {
	return &RoomManager{
		logger:    logger.With("component", "room-manager"),
		roomRepo:  roomRepo,
		matchRepo: matchRepo,

		capacity:     max(capacity, 1),
		codeAttempts: max(codeAttempts, 1),

		rooms:   make(map[string]*room),
		clients: intmap.New[uint64, *client](64),
	}
}

// Join attaches a connection to the room with the given code. A new room is
// created when the code is empty, unknown or the room is full. The joining
// connection receives the room code, then every member receives the new
// room state.
func (that *RoomManager) Join(ctx context.Context, peer Peer, name, code string) (uint64, string, error) {
	log := that.logger.With("method", "Join")

	if name == "" {
		return 0, "", apperror.ErrMissingName
	}

	that.mu.Lock()

	r, ok := that.rooms[code]
	if code == "" || !ok || r.record.IsFull(that.capacity) {
		var err error
		if r, err = that.newRoom(); err != nil {
			that.mu.Unlock()
			return 0, "", err
		}
	}

	that.nextID++
	c := &client{id: that.nextID, name: name, peer: peer, room: r}
	c.index = r.record.Join(name)
	r.clients = append(r.clients, c)
	that.clients.Put(c.id, c)

	codeMsg, err := protocol.NewMessage(protocol.ActionRoomCode, r.record.Code)
	if err != nil {
		that.mu.Unlock()
		return 0, "", err
	}

	deliveries := append([]delivery{{to: c, msg: codeMsg}}, that.roomStateLocked(r)...)
	snapshot := *r.record
	snapshot.Members = slices.Clone(r.record.Members)

	prev, turn := r.nextTurn()
	that.mu.Unlock()
	<-prev
	defer close(turn)

	that.deliver(deliveries)
	if err = that.roomRepo.CreateOrUpdate(ctx, &snapshot); err != nil {
		log.Error("failed to save room", "code", snapshot.Code, "error", err)
	}

	log.Info("client joined room", "client", c.id, "name", name, "code", snapshot.Code, "members", len(snapshot.Members))

	return c.id, snapshot.Code, nil
}

// Leave detaches a connection. The room is removed with its last member;
// otherwise the remaining members get the new room state.
func (that *RoomManager) Leave(ctx context.Context, clientID uint64) error {
	log := that.logger.With("method", "Leave")

	that.mu.Lock()

	c, ok := that.clients.Get(clientID)
	if !ok {
		that.mu.Unlock()
		return apperror.ErrUnknownClient
	}

	that.clients.Del(clientID)
	c.left.Store(true)

	r := c.room
	index := slices.Index(r.clients, c)
	r.clients = slices.Delete(r.clients, index, index+1)
	r.record.Leave(index)
	for i, other := range r.clients {
		other.index = i
	}

	code := r.record.Code
	if r.record.IsEmpty() {
		delete(that.rooms, code)
		prev, turn := r.nextTurn()
		that.mu.Unlock()
		<-prev
		defer close(turn)

		if err := that.roomRepo.DeleteByCode(ctx, code); err != nil {
			log.Error("failed to delete room", "code", code, "error", err)
		}

		log.Info("room closed", "code", code)
		return nil
	}

	deliveries := that.roomStateLocked(r)
	snapshot := *r.record
	snapshot.Members = slices.Clone(r.record.Members)

	prev, turn := r.nextTurn()
	that.mu.Unlock()
	<-prev
	defer close(turn)

	that.deliver(deliveries)
	if err := that.roomRepo.CreateOrUpdate(ctx, &snapshot); err != nil {
		log.Error("failed to save room", "code", code, "error", err)
	}

	log.Info("client left room", "client", clientID, "code", code, "members", len(snapshot.Members))

	return nil
}

// StartGame handles a host's start request: every member is told the seed,
// the rules and the participant count, and a match record is opened.
func (that *RoomManager) StartGame(ctx context.Context, clientID uint64, req protocol.StartGameRequest) (string, error) {
	log := that.logger.With("method", "StartGame")

	that.mu.Lock()

	c, ok := that.clients.Get(clientID)
	if !ok {
		that.mu.Unlock()
		return "", apperror.ErrUnknownClient
	}

	r := c.room
	if r.clients[0] != c {
		that.mu.Unlock()
		return "", apperror.ErrNotHost
	}

	players := make([]string, len(r.clients))
	for i, member := range r.clients {
		member.index = i
		players[i] = member.name
	}

	msg, err := protocol.NewMessage(protocol.ActionStartGame, protocol.StartGame{
		Seed:    req.Seed,
		Rules:   req.Rules,
		Players: len(players),
	})
	if err != nil {
		that.mu.Unlock()
		return "", err
	}

	match := &entity.Match{
		ID:        uuid.NewString(),
		RoomCode:  r.record.Code,
		Seed:      req.Seed,
		Rules:     req.Rules,
		Players:   players,
		StartedAt: time.Now().UTC(),
	}
	r.record.StartMatch(match.ID)

	deliveries := make([]delivery, 0, len(r.clients))
	for _, member := range r.clients {
		deliveries = append(deliveries, delivery{to: member, msg: msg})
	}
	snapshot := *r.record
	snapshot.Members = slices.Clone(r.record.Members)

	prev, turn := r.nextTurn()
	that.mu.Unlock()
	<-prev
	defer close(turn)

	if err = that.matchRepo.Create(ctx, match); err != nil {
		log.Error("failed to save match", "match", match.ID, "error", err)
	}
	if err = that.roomRepo.CreateOrUpdate(ctx, &snapshot); err != nil {
		log.Error("failed to save room", "code", snapshot.Code, "error", err)
	}

	that.deliver(deliveries)

	log.Info("match started", "code", snapshot.Code, "match", match.ID, "seed", req.Seed, "players", len(players))

	return match.ID, nil
}

// Forward sends a client's update to every other member of its room, tagged
// with the sender's index, and appends it to the match journal.
func (that *RoomManager) Forward(ctx context.Context, clientID uint64, update protocol.Update) error {
	log := that.logger.With("method", "Forward")

	that.mu.Lock()

	c, ok := that.clients.Get(clientID)
	if !ok {
		that.mu.Unlock()
		return apperror.ErrUnknownClient
	}

	r := c.room
	msg, err := protocol.NewMessage(protocol.ActionBroadcastUpdate, protocol.Broadcast{Index: c.index, Update: update})
	if err != nil {
		that.mu.Unlock()
		return err
	}

	deliveries := make([]delivery, 0, len(r.clients))
	for _, member := range r.clients {
		if member != c {
			deliveries = append(deliveries, delivery{to: member, msg: msg})
		}
	}
	matchID := r.record.MatchID
	index := c.index

	prev, turn := r.nextTurn()
	that.mu.Unlock()
	<-prev
	defer close(turn)

	that.deliver(deliveries)

	if matchID == "" {
		return nil
	}

	raw, err := protocol.EncodeUpdate(update)
	if err != nil {
		return err
	}

	if err = that.matchRepo.AppendUpdate(ctx, matchID, entity.JournalEntry{Index: index, Update: raw}); err != nil {
		log.Error("failed to journal update", "match", matchID, "error", err)
	}

	return nil
}

// Members returns the names in a room, or false when no such room is open.
func (that *RoomManager) Members(code string) ([]string, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	r, ok := that.rooms[code]
	if !ok {
		return nil, false
	}

	return slices.Clone(r.record.Members), true
}

func (that *RoomManager) Clients() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.clients.Len()
}

func (that *RoomManager) newRoom() (*room, error) {
	for range that.codeAttempts {
		code := fmt.Sprintf("%x", rand.IntN(roomCodeSpace)) //nolint: gosec // room codes are not secrets
		if _, taken := that.rooms[code]; taken {
			continue
		}

		r := newRoomState(code)
		that.rooms[code] = r

		return r, nil
	}

	return nil, apperror.ErrNoFreeRoomCode
}

func (that *RoomManager) roomStateLocked(r *room) []delivery {
	log := that.logger.With("method", "roomStateLocked")

	names := slices.Clone(r.record.Members)
	deliveries := make([]delivery, 0, len(r.clients))
	for i, member := range r.clients {
		msg, err := protocol.NewMessage(protocol.ActionRoomState, protocol.RoomState{Index: i, Names: names})
		if err != nil {
			log.Error("failed to encode room state", "error", err)
			continue
		}
		deliveries = append(deliveries, delivery{to: member, msg: msg})
	}

	return deliveries
}

// deliver pushes messages to their peers, skipping clients that left while
// the turn was waited for. A failed send is only logged; the connection's own
// read loop notices the broken socket and leaves.
func (that *RoomManager) deliver(deliveries []delivery) {
	log := that.logger.With("method", "deliver")

	for _, d := range deliveries {
		if d.to.left.Load() {
			continue
		}
		if err := d.to.peer.Send(d.msg); err != nil {
			log.Warn("failed to send message", "client", d.to.id, "action", d.msg.Action, "error", err)
		}
	}
}
