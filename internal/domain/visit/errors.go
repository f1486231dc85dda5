package visit

import "errors"

var (
	ErrVisitNotFound = errors.New("visit not found")
	ErrSlotTaken     = errors.New("visit slot is already booked for this doctor")
	ErrInvalidStatus = errors.New("invalid visit status")
)
