package transfer

import "errors"

var (
	// ErrConnectionFailed indicates the settlement node could not be reached.
	ErrConnectionFailed = errors.New("transfer: connection failed")

	// ErrInvalidResponse indicates the node's response could not be decoded.
	ErrInvalidResponse = errors.New("transfer: invalid response")

	// ErrTransferRejected indicates the node refused the send (e.g. insufficient funds).
	ErrTransferRejected = errors.New("transfer: rejected by node")
)
