package orchestrator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/montyhall/internal/model"
	"github.com/danielpatrickdp/montyhall/internal/store"
)

// #region command
// Command is one parsed driver request. A nil HostDoor means an
// unconditioned simulation.
type Command struct {
	ContestantDoor model.Door
	HostDoor       *model.Door
}

// Mode returns the store run mode for the command.
func (c Command) Mode() string {
	if c.HostDoor == nil {
		return store.ModeSimulate
	}
	return store.ModeCondition
}

// #endregion command

// #region parse
// ParseCommand reads "<contestant> [host]" from a line of input.
// Door values are validated; scenario validity is left to the driver.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || len(fields) > 2 {
		return Command{}, fmt.Errorf("expected \"<contestant> [host]\", got %q", strings.TrimSpace(line))
	}

	contestant, err := parseDoor(fields[0])
	if err != nil {
		return Command{}, fmt.Errorf("contestant door: %w", err)
	}
	cmd := Command{ContestantDoor: contestant}

	if len(fields) == 2 {
		host, err := parseDoor(fields[1])
		if err != nil {
			return Command{}, fmt.Errorf("host door: %w", err)
		}
		cmd.HostDoor = &host
	}
	return cmd, nil
}

func parseDoor(s string) (model.Door, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", model.ErrInvalidDoor, s)
	}
	d := model.Door(n)
	if err := d.Validate(); err != nil {
		return 0, err
	}
	return d, nil
}

// #endregion parse
