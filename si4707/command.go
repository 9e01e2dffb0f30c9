// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package si4707

// Command priorities, lowest numeric value drains first within the
// priority queue.
const (
	// PriorityUninterruptable is for commands that must run to completion
	// before anything else touches the chip: PowerUp, PatchCommand,
	// PowerDown.
	PriorityUninterruptable = 0
	// PriorityInterruptHandler is for the commands the driver itself
	// issues in response to a chip interrupt.
	PriorityInterruptHandler = 1
	// PriorityUser is the default priority for caller-issued commands.
	PriorityUser = 2
)

// Command is one request to the Si4707: a self-contained unit of work the
// command worker executes with exclusive access to the hardware context.
type Command interface {
	// Priority reports this command's queue priority; lower runs first.
	Priority() int

	// execute runs the command against the driver's hardware context and
	// returns whatever result DoCommand's caller should see.
	execute(d *Driver) (interface{}, error)
}
