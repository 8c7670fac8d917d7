package common

// RPC method names served by the daemon.
const (
	MethodGetVersion   = "system.getVersion"
	MethodAlarmAdd     = "alarm.add"
	MethodAlarmRemove  = "alarm.remove"
	MethodAlarmList    = "alarm.list"
	MethodAlarmCommand = "alarm.command"
)

// Push notifications sent to WebSocket clients.
const (
	NotifyAlarmAdded   = "alarm.added"
	NotifyAlarmRemoved = "alarm.removed"
	NotifyAlarmExpired = "alarm.expired"
)

// HTTP routes.
const (
	RouteJSONRPC   = "/jsonrpc"
	RouteWebSocket = "/jsonrpc/ws"
	RouteHealth    = "/healthz"
)

// DefaultListenAddr is where the daemon listens unless configured otherwise.
const DefaultListenAddr = "127.0.0.1:9411"
