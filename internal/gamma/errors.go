package gamma

import "errors"

var errNoUsableBackend = errors.New("gamma: no backend exposed a usable head")
