package ranking

import "errors"

// ErrMissingScope is returned when a ranking is requested without a scope
// and no default applies.
var ErrMissingScope = errors.New("no scope given and no default scope configured")
