package selfupdate

import (
	"github.com/smykla-skalski/realms-launcher/internal/exec"
)

// Spawner starts the update helper.
type Spawner interface {
	// Start runs name detached from the current process group.
	Start(name string, args []string, dir string) error

	// StartElevated asks the OS to run name with administrative rights.
	StartElevated(name string, args []string, dir string) error
}

type systemSpawner struct{}

// NewSystemSpawner returns the Spawner that starts real processes.
func NewSystemSpawner() Spawner {
	return systemSpawner{}
}

func (systemSpawner) Start(name string, args []string, dir string) error {
	_, err := exec.StartDetached(name, args, dir)

	return err
}

func (systemSpawner) StartElevated(name string, args []string, dir string) error {
	return startElevated(name, args, dir)
}
