package model

import "errors"

// ErrNotFoundOrUnauthorized merges "absent" and "not yours" so callers cannot
// probe for the existence of another user's resource.
var ErrNotFoundOrUnauthorized = errors.New("not found or unauthorized")
