// Package replication keeps every player's game in step by broadcasting the
// local player's actions and replaying received ones on shadow games.
package replication

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/rocketscienceinc/tetris-backend/internal/protocol"
	"github.com/rocketscienceinc/tetris-backend/internal/scheduler"
	"github.com/rocketscienceinc/tetris-backend/internal/tetris"
)

var (
	ErrNotHost       = errors.New("only the host can start a match")
	ErrBadStart      = errors.New("invalid start game message")
	ErrUnknownPlayer = errors.New("update for unknown player")
	ErrDisconnected  = errors.New("connection to relay closed")
)

// Sender delivers a message to the relay.
type Sender interface {
	Send(msg protocol.Message) error
}

// Member is one participant as seen by this client.
type Member struct {
	Name   string
	Game   *tetris.Game
	Winner bool
	Wins   int
}

// Session is a client's view of a room and its current match. It is driven
// from a single goroutine; see Run.
type Session struct {
	logger *slog.Logger
	sender Sender
	prefs  scheduler.Preferences

	code    string
	index   int
	members []*Member

	local       *tetris.Game
	controller  *scheduler.Controller
	unsubscribe func()

	handlers map[string]func(msg protocol.Message) error
}

func NewSession(logger *slog.Logger, sender Sender, prefs scheduler.Preferences) *Session {
	session := &Session{
		logger: logger.With("component", "session"),
		sender: sender,
		prefs:  prefs,

		handlers: make(map[string]func(protocol.Message) error),
	}

	session.handlers[protocol.ActionRoomCode] = session.handleRoomCode
	session.handlers[protocol.ActionRoomState] = session.handleRoomState
	session.handlers[protocol.ActionStartGame] = session.handleStartGame
	session.handlers[protocol.ActionBroadcastUpdate] = session.handleBroadcast

	return session
}

func (that *Session) Code() string        { return that.code }
func (that *Session) Index() int          { return that.index }
func (that *Session) InMatch() bool       { return that.local != nil }
func (that *Session) Local() *tetris.Game { return that.local }

// Members returns a snapshot of the room in relay order.
func (that *Session) Members() []Member {
	out := make([]Member, len(that.members))
	for i, m := range that.members {
		out[i] = *m
	}

	return out
}

// HandleMessage dispatches one message from the relay.
func (that *Session) HandleMessage(msg protocol.Message) error {
	handler, ok := that.handlers[msg.Action]
	if !ok {
		return fmt.Errorf("%w: %q", protocol.ErrUnknownAction, msg.Action)
	}

	return handler(msg)
}

// Tick advances the local game by one step.
func (that *Session) Tick() {
	if that.controller != nil {
		that.controller.Tick()
	}
}

// Input forwards a player input to the local game.
func (that *Session) Input(in scheduler.Input) {
	if that.controller != nil {
		that.controller.Handle(in)
	}
}

// RequestStart asks the relay to start a match with a fresh seed. Only the
// first member of the room may do so.
func (that *Session) RequestStart(rules tetris.Rules) error {
	if len(that.members) == 0 || that.index != 0 {
		return ErrNotHost
	}

	data, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("failed to marshal rules: %w", err)
	}

	msg, err := protocol.NewMessage(protocol.ActionStartGameRequest, protocol.StartGameRequest{
		Seed:  rand.Uint32(), //nolint: gosec // not a secret
		Rules: data,
	})
	if err != nil {
		return err
	}

	if err = that.sender.Send(msg); err != nil {
		return fmt.Errorf("failed to send start request: %w", err)
	}

	return nil
}

func (that *Session) handleRoomCode(msg protocol.Message) error {
	code, err := protocol.DecodePayload[string](msg)
	if err != nil {
		return err
	}

	that.code = code
	that.logger.Info("joined room", "code", code)

	return nil
}

// handleRoomState replaces the member list. A membership change during a
// match abandons it, since player indices no longer line up.
func (that *Session) handleRoomState(msg protocol.Message) error {
	state, err := protocol.DecodePayload[protocol.RoomState](msg)
	if err != nil {
		return err
	}

	if state.Index < 0 || state.Index >= len(state.Names) {
		return fmt.Errorf("%w: index %d of %d", ErrUnknownPlayer, state.Index, len(state.Names))
	}

	if that.InMatch() {
		that.logger.Info("room changed during match, abandoning it")
		that.reset()
	}

	wins := make(map[string]int, len(that.members))
	for _, m := range that.members {
		wins[m.Name] = m.Wins
	}

	that.members = make([]*Member, len(state.Names))
	for i, name := range state.Names {
		that.members[i] = &Member{Name: name, Wins: wins[name]}
	}
	that.index = state.Index

	return nil
}

func (that *Session) handleStartGame(msg protocol.Message) error {
	log := that.logger.With("method", "handleStartGame")

	start, err := protocol.DecodePayload[protocol.StartGame](msg)
	if err != nil {
		return err
	}

	if start.Players != len(that.members) || that.index >= start.Players {
		return fmt.Errorf("%w: %d players for %d members", ErrBadStart, start.Players, len(that.members))
	}

	rules, err := tetris.LoadRules(start.Rules)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadStart, err)
	}

	that.reset()

	for i, m := range that.members {
		m.Game = tetris.NewGame(rules, start.Seed)
		m.Winner = false
		if i == that.index {
			that.local = m.Game
		}
	}

	that.unsubscribe = that.local.Subscribe(that.onLocalEvent)
	that.controller = scheduler.NewController(that.local, that.prefs)

	log.Info("match started", "seed", start.Seed, "players", start.Players)

	that.controller.Start()

	return nil
}

func (that *Session) handleBroadcast(msg protocol.Message) error {
	log := that.logger.With("method", "handleBroadcast")

	b, err := protocol.DecodePayload[protocol.Broadcast](msg)
	if err != nil {
		return err
	}

	if !that.InMatch() {
		log.Debug("update outside of a match", "from", b.Index, "type", b.Update.Type())
		return nil
	}

	if b.Index < 0 || b.Index >= len(that.members) || b.Index == that.index {
		return fmt.Errorf("%w: %d", ErrUnknownPlayer, b.Index)
	}

	if err = applyUpdate(that.members[b.Index].Game, b.Update); err != nil {
		return err
	}

	switch u := b.Update.(type) {
	case protocol.SendLines:
		that.routeGarbage(b.Index, u.Count)
	case protocol.EndGame:
		that.checkExit()
	}

	return nil
}

// onLocalEvent broadcasts a local action and performs its local side effects.
func (that *Session) onLocalEvent(event tetris.Event) {
	log := that.logger.With("method", "onLocalEvent")

	update, ok := updateFor(event)
	if !ok {
		log.Error("event without wire form", "action", event.Action.String())
		return
	}

	msg, err := protocol.NewUpdateMessage(update)
	if err != nil {
		log.Error("failed to encode update", "error", err)
		return
	}

	if err = that.sender.Send(msg); err != nil {
		log.Error("failed to send update", "type", update.Type(), "error", err)
	}

	switch event.Action {
	case tetris.ActionSendLines:
		that.routeGarbage(that.index, event.Count)
	case tetris.ActionEndGame:
		that.checkExit()
	}
}

func (that *Session) routeGarbage(from, count int) {
	if len(that.members) < 2 {
		return
	}

	target := garbageTarget(from, len(that.members))
	if game := that.members[target].Game; game != nil {
		game.AddGarbage(count)
	}
}

// checkExit ends the match once at most one player is left alive, crediting
// the survivor when there was an opponent to beat.
func (that *Session) checkExit() {
	if !that.InMatch() {
		return
	}

	alive := -1
	count := 0
	for i, m := range that.members {
		if m.Game != nil && !m.Game.Dead() {
			alive = i
			count++
		}
	}

	switch {
	case count == 1 && len(that.members) > 1:
		winner := that.members[alive]
		winner.Winner = true
		winner.Wins++
		that.logger.Info("match won", "winner", winner.Name, "index", alive)
		that.reset()
	case count == 0:
		that.logger.Info("match over")
		that.reset()
	}
}

func (that *Session) reset() {
	if that.unsubscribe != nil {
		that.unsubscribe()
		that.unsubscribe = nil
	}

	that.local = nil
	that.controller = nil
	for _, m := range that.members {
		m.Game = nil
	}
}
