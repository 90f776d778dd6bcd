package simulation

import (
	errorsmod "cosmossdk.io/errors"

	"github.com/oxygene76/orrery/pkg/assets"
)

// Codespace groups the orrery errors in the errorsmod registry
const Codespace = "orrery"

// Every rejection the kernel reports. None of them is fatal: callers show
// the message to the user or ignore it.
var (
	ErrDuplicateName    = errorsmod.Register(Codespace, 2, "duplicate name")
	ErrCapacityExceeded = errorsmod.Register(Codespace, 3, "capacity exceeded")
	ErrNotFound         = errorsmod.Register(Codespace, 4, "not found")
	ErrTooCloseToCenter = errorsmod.Register(Codespace, 5, "position too close to center")
	ErrInvalidSelector  = errorsmod.Register(Codespace, 8, "invalid selector")
	ErrOutOfRange       = errorsmod.Register(Codespace, 13, "value out of range")
)

// Asset errors are registered next to the loader; they are re-exported here
// so callers can match every kernel rejection from one package.
var (
	ErrAssetLoadFailed = assets.ErrLoadFailed
	ErrUnknownKind     = assets.ErrUnknownKind
)
