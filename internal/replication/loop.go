package replication

import (
	"context"
	"fmt"
	"time"

	"github.com/rocketscienceinc/tetris-backend/internal/protocol"
	"github.com/rocketscienceinc/tetris-backend/internal/scheduler"
)

// Driver produces inputs from the session's own state. It is called on the
// loop goroutine right before every tick, so it may read the session freely.
type Driver interface {
	Drive(session *Session)
}

// Run drives a session: relay messages and local inputs are applied as they
// arrive and the local game is ticked at scheduler.TickRate. It returns when
// ctx is done, the inbound channel closes or a message cannot be handled.
func Run(ctx context.Context, session *Session, inbound <-chan protocol.Message, inputs <-chan scheduler.Input) error {
	return runEvery(ctx, scheduler.TickRate, session, inbound, inputs, nil)
}

// RunDriven is Run with inputs coming from driver instead of a channel.
func RunDriven(ctx context.Context, session *Session, inbound <-chan protocol.Message, driver Driver) error {
	return runEvery(ctx, scheduler.TickRate, session, inbound, nil, driver)
}

func runEvery(
	ctx context.Context,
	interval time.Duration,
	session *Session,
	inbound <-chan protocol.Message,
	inputs <-chan scheduler.Input,
	driver Driver,
) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-inbound:
			if !ok {
				return ErrDisconnected
			}
			if err := session.HandleMessage(msg); err != nil {
				return fmt.Errorf("failed to handle %s: %w", msg.Action, err)
			}
		case in := <-inputs:
			session.Input(in)
		case <-ticker.C:
			if driver != nil {
				driver.Drive(session)
			}
			session.Tick()
		}
	}
}
