package global

import (
	"github.com/rs/zerolog"
)

// Logger is the process logger. initialize replaces it once the config is
// loaded; until then it writes to the console.
var Logger zerolog.Logger
