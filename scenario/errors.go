package scenario

import "errors"

var ErrUnsupportedEvent = errors.New("scenario: unsupported event")
