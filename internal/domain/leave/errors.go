package leave

import "ems/internal/platform/apperr"

var (
	ErrLeaveNotFound     = apperr.NotFound("leave")
	ErrInvalidTransition = apperr.Conflict("leave status does not allow this change")
	ErrNotEditable       = apperr.Conflict("only pending leave can be edited")
)
