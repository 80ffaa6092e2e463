package exitcodes

// Exit codes for cleanstore
// These codes form the operational contract with scripts and launch agents
const (
	Success       = 0 // Run completed, per-file failures included
	InvalidConfig = 2 // Config invalid, root missing or not a directory
	RuntimeError  = 4 // Runtime error during execution
)
