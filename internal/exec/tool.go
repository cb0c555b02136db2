package exec

//go:generate mockgen -source=tool.go -destination=tool_mock.go -package=exec

import "os/exec"

// ToolChecker locates the interpreters that run update helper scripts.
type ToolChecker interface {
	// IsAvailable reports whether tool resolves on PATH.
	IsAvailable(tool string) bool

	// Lookup returns the resolved path of tool and whether it was found.
	Lookup(tool string) (string, bool)
}

type pathToolChecker struct{}

// NewToolChecker returns a ToolChecker that searches PATH.
func NewToolChecker() ToolChecker {
	return pathToolChecker{}
}

func (c pathToolChecker) IsAvailable(tool string) bool {
	_, ok := c.Lookup(tool)

	return ok
}

func (pathToolChecker) Lookup(tool string) (string, bool) {
	path, err := exec.LookPath(tool)
	if err != nil {
		return "", false
	}

	return path, true
}
