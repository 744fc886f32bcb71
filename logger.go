package pipeline

import "github.com/soundforge/pipeline/logging"

// Logger is an alias for logging.Logger so callers configuring a
// Coordinator don't need a second import for the common case.
type Logger = logging.Logger

// noopLogger is used whenever Config.Logger is left nil.
var noopLogger Logger = logging.Noop{}
