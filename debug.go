//go:build !ecsrelease

package poolecs

// DEBUG reports whether internal integrity checks and debug event listeners
// are compiled in. Build with the "ecsrelease" tag to strip them.
const DEBUG = true
