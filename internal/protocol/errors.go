package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Command layer.
	ErrBadCommand    = "E_BAD_COMMAND"
	ErrIllegalAction = "E_ILLEGAL_ACTION"
	ErrBlocked       = "E_BLOCKED"
	ErrUnreachable   = "E_UNREACHABLE"
	ErrInternal      = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrBadCommand:      {},
	ErrIllegalAction:   {},
	ErrBlocked:         {},
	ErrUnreachable:     {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
