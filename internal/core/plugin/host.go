package plugin

import (
	"os"
	"strings"
	"time"

	"github.com/nexusshell/nexusshell/internal/core/shellerr"
	"github.com/nexusshell/nexusshell/internal/logger"
)

const hostFunctionPrefix = "host."

// isHostFunction reports whether name is dispatched in-process rather
// than called into the guest module.
func isHostFunction(name string) bool {
	return strings.HasPrefix(name, hostFunctionPrefix)
}

// callHostFunction implements the fixed set of host.* functions a guest
// may call. Unknown host.* names fail closed with NotFound rather than
// falling through to the guest export table.
func callHostFunction(pluginID, name string, args []ComponentValue) (ComponentValue, *shellerr.ShellError) {
	switch name {
	case "host.log":
		msg := ""
		if len(args) > 0 {
			msg = args[0].Str
		}
		logger.Info("plugin log", "plugin_id", pluginID, "message", msg)
		return ComponentValue{}, nil

	case "host.env_get":
		key := ""
		if len(args) > 0 {
			key = args[0].Str
		}
		return String(os.Getenv(key)), nil

	case "host.time_now_ms":
		return S64(time.Now().UnixMilli()), nil

	default:
		return ComponentValue{}, shellerr.New(shellerr.KindNotFound, "unknown host function %q", name).
			WithContext("plugin_id", pluginID)
	}
}
