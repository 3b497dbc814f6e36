package scratchpad

import "errors"

// ErrRequestFailed is a generic wrap target for EditRequester failures; the
// loop records the underlying error's message in the scratch-pad rather
// than surfacing it to the caller, since one symbol's edit failing must not
// abort its siblings.
var ErrRequestFailed = errors.New("scratchpad: edit request failed")
