package terminal

import "errors"

var (
	// ErrReaderBusy is returned when another reader or poller holds the input
	ErrReaderBusy = errors.New("terminal input already claimed")
	// ErrClosed is returned by a poller after Close
	ErrClosed = errors.New("terminal poller closed")
)
