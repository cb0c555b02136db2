package selfupdate

import (
	"strconv"

	"github.com/cockroachdb/errors"
)

// PlanArgCount is the number of positional helper arguments.
const PlanArgCount = 7

// ErrInvalidPlan is returned when helper arguments cannot be parsed.
var ErrInvalidPlan = errors.New("invalid update plan")

// Plan is everything the update helper needs once the launcher has exited.
type Plan struct {
	TargetDir    string
	StagedDir    string
	MainPID      int
	RelaunchPath string
	RelaunchArgs string
	RelaunchCwd  string
	LogPath      string
}

// Args returns the plan as the helpers' positional arguments:
// targetDir stagedDir mainPid relaunchPath relaunchArgs relaunchCwd logPath.
func (p Plan) Args() []string {
	return []string{
		p.TargetDir,
		p.StagedDir,
		strconv.Itoa(p.MainPID),
		p.RelaunchPath,
		p.RelaunchArgs,
		p.RelaunchCwd,
		p.LogPath,
	}
}

// ParsePlan is the inverse of Plan.Args. A non-numeric pid is treated as 0,
// which skips the pid wait.
func ParsePlan(args []string) (Plan, error) {
	if len(args) != PlanArgCount {
		return Plan{}, errors.Wrapf(ErrInvalidPlan, "expected %d arguments, got %d", PlanArgCount, len(args))
	}

	if args[0] == "" || args[1] == "" {
		return Plan{}, errors.Wrap(ErrInvalidPlan, "target and staged directories are required")
	}

	pid, err := strconv.Atoi(args[2])
	if err != nil || pid < 0 {
		pid = 0
	}

	return Plan{
		TargetDir:    args[0],
		StagedDir:    args[1],
		MainPID:      pid,
		RelaunchPath: args[3],
		RelaunchArgs: args[4],
		RelaunchCwd:  args[5],
		LogPath:      args[6],
	}, nil
}
