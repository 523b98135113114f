package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrSlotConsumed reports a second allocation of the same channel id by
	// the same worker. Fatal programming error.
	ErrSlotConsumed = errors.New("transport: channel slot already consumed")

	// ErrDisconnected reports a send or receive against an endpoint whose
	// peer has been closed. Fatal; this layer has no retry path.
	ErrDisconnected = errors.New("transport: peer endpoint disconnected")

	// ErrBuzzerExchange reports a broken buzzer handshake during worker
	// bring-up. Fatal setup error.
	ErrBuzzerExchange = errors.New("transport: buzzer exchange failed")
)

// TypeMismatchError reports that a live channel id was allocated with a
// payload type different from the one it was constructed with. The workers
// disagree about the id's type; that contract is external and unenforced,
// so the mismatch is surfaced explicitly rather than misinterpreting the
// entry. Fatal.
type TypeMismatchError struct {
	Channel uint64
	Want    string
	Have    string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("transport: channel %d allocated as %s, requested as %s", e.Channel, e.Have, e.Want)
}
