// Package process terminates browser process trees that did not exit
// after a normal close.
package process

import "errors"

// ErrInvalidPID is returned for pids that would address the caller's own
// process group or every process.
var ErrInvalidPID = errors.New("process: invalid pid")
