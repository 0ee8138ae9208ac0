package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"todo/internal/service"
)

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses the 1-based position of a task in the listing.
// Exactly one all-digit argument is accepted.
func ParseTaskRef(args []string) (int, error) {
	if len(args) == 0 {
		return 0, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("unexpected argument: %s", args[1])
	}

	ref := args[0]
	if ref == "" || strings.TrimLeft(ref, "0123456789") != "" {
		return 0, fmt.Errorf("invalid task reference: %s", ref)
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("invalid task reference: %s", ref)
	}
	return n, nil
}

// taskAt returns the task shown at position n of the listing.
func taskAt(tasks []service.Task, n int) (service.Task, error) {
	if n < 1 || n > len(tasks) {
		return service.Task{}, fmt.Errorf("task number out of range: %d", n)
	}
	return tasks[n-1], nil
}
