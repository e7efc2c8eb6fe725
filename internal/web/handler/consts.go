package handler

const (
	// BridgePath is the prefix of every bridge route.
	BridgePath = "/bridge"

	// ErrNilDepsFatalLogMsg is used if app or one of the handler dependencies is nil.
	ErrNilDepsFatalLogMsg = "app, bridge or hub is nil"
)
