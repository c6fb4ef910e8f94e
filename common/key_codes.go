package common

// Key codes the hosts react to. Values are GLFW key codes.
const (
	KeyEsc = 256 // quit
	KeyF9  = 298 // simulate a lost device
)
