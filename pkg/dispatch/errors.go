package dispatch

import "errors"

// Declined actions surfaced to the caller. Everything else the engine
// recovers from internally.
var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrNoVehiclesAvailable = errors.New("no idle vehicles available")
	ErrNoVehicleSlots      = errors.New("station has no free vehicle slots")
	ErrUnknownMission      = errors.New("unknown mission")
	ErrUnknownStation      = errors.New("unknown station")
	ErrMissionNotPending   = errors.New("mission is not pending")
	ErrInvalidGameSpeed    = errors.New("game speed must be 1, 2 or 3")
)
