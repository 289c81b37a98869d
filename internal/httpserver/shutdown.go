package httpserver

import "time"

// ShutdownTimeout controls how long to wait for in-flight requests, background
// asset deletions and store connections to drain.
var ShutdownTimeout = 15 * time.Second
