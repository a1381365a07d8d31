package reassembly

import "errors"

// ErrCancelled is reported by Result when the exchange was torn down
// before the response completed.
var ErrCancelled = errors.New("reassembly: exchange cancelled")
