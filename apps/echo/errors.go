package echo

import "errors"

var errInitFailed = errors.New("echo: failed to subscribe to request event")
