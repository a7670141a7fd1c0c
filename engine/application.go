package engine

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Everything has been released
	EngineStageShutdown
)

func (s Stage) String() string {
	switch s {
	case EngineStageUninitialized:
		return "uninitialized"
	case EngineStageInitializing:
		return "initializing"
	case EngineStageInitialized:
		return "initialized"
	case EngineStageRunning:
		return "running"
	case EngineStageShuttingDown:
		return "shutting down"
	case EngineStageShutdown:
		return "shutdown"
	}
	return "unknown"
}

// canTransition lists the stage changes the engine goes through, in order.
func (s Stage) canTransition(to Stage) bool {
	switch to {
	case EngineStageInitializing:
		return s == EngineStageUninitialized
	case EngineStageInitialized:
		return s == EngineStageInitializing
	case EngineStageRunning:
		return s == EngineStageInitialized
	case EngineStageShuttingDown:
		// a failed initialization still has to release what it created
		return s != EngineStageShutdown && s != EngineStageShuttingDown
	case EngineStageShutdown:
		return s == EngineStageShuttingDown
	}
	return false
}
