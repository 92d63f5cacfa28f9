package bot

import (
	"log/slog"

	"github.com/rocketscienceinc/tetris-backend/internal/replication"
	"github.com/rocketscienceinc/tetris-backend/internal/scheduler"
	"github.com/rocketscienceinc/tetris-backend/internal/tetris"
)

const (
	// stallLimit is how many decisions may leave the piece where it was
	// before the bot gives up and hard drops.
	stallLimit = 3
	// startDelay is how long the host waits between matches, in ticks.
	startDelay = 120
)

type Config struct {
	Rules      tetris.Rules
	ThinkTicks int
	AutoStart  bool
}

// Player is a replication.Driver that plays the local game.
type Player struct {
	logger *slog.Logger
	conf   Config

	pieceID int
	target  Placement
	last    tetris.Piece
	stalls  int

	pending []scheduler.Input
	wait    int
	idle    int
}

func NewPlayer(logger *slog.Logger, conf Config) *Player {
	return &Player{
		logger:  logger.With("component", "bot"),
		conf:    conf,
		pieceID: -1,
	}
}

// Drive issues at most one input per call.
func (that *Player) Drive(session *replication.Session) {
	if !session.InMatch() {
		that.maybeStart(session)
		return
	}
	that.idle = 0

	if len(that.pending) > 0 {
		session.Input(that.pending[0])
		that.pending = that.pending[1:]
		return
	}

	if that.wait > 0 {
		that.wait--
		return
	}

	piece, ok := session.Local().Falling()
	if !ok {
		return
	}

	that.pending = that.plan(session.Local(), piece)
	that.wait = that.conf.ThinkTicks

	session.Input(that.pending[0])
	that.pending = that.pending[1:]
}

func (that *Player) maybeStart(session *replication.Session) {
	log := that.logger.With("method", "maybeStart")

	that.pending = nil
	that.pieceID = -1

	if !that.conf.AutoStart || session.Index() != 0 || len(session.Members()) < 2 {
		that.idle = 0
		return
	}

	that.idle++
	if that.idle != startDelay {
		return
	}

	if err := session.RequestStart(that.conf.Rules); err != nil {
		log.Error("failed to request start", "error", err)
		return
	}

	log.Info("requested a match", "players", len(session.Members()))
}

// plan picks the next inputs that bring the piece closer to its target.
func (that *Player) plan(game *tetris.Game, piece tetris.Piece) []scheduler.Input {
	log := that.logger.With("method", "plan")

	if piece.ID != that.pieceID {
		target, err := Choose(game)
		if err != nil {
			log.Debug("no placement, dropping", "piece", piece.Kind.String())
			return []scheduler.Input{scheduler.InputHardDrop}
		}

		that.pieceID = piece.ID
		that.target = target
		that.stalls = 0
	} else if piece.Rotation == that.last.Rotation && piece.Position.X == that.last.Position.X {
		that.stalls++
	}
	that.last = piece

	switch {
	case that.stalls >= stallLimit:
		return []scheduler.Input{scheduler.InputHardDrop}
	case piece.Rotation != that.target.Rotation:
		if (that.target.Rotation-piece.Rotation+4)%4 == 3 {
			return []scheduler.Input{scheduler.InputRotateCCW}
		}
		return []scheduler.Input{scheduler.InputRotateCW}
	case piece.Position.X < that.target.X:
		return []scheduler.Input{scheduler.InputRightDown, scheduler.InputRightUp}
	case piece.Position.X > that.target.X:
		return []scheduler.Input{scheduler.InputLeftDown, scheduler.InputLeftUp}
	default:
		return []scheduler.Input{scheduler.InputHardDrop}
	}
}
