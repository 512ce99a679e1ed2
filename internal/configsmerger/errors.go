package configsmerger

import "errors"

// ErrNoCommand is returned when neither the CLI nor the image
// metadata provides an entrypoint or a command to execute.
var ErrNoCommand = errors.New("no command")
