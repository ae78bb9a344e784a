package vm

import (
	"fmt"
	"strings"
)

// Error is the fatal-error shape spec §4.8/§7 describes: an unknown
// opcode/extension combination, a fall-off-the-end, or any other
// condition the dispatch loop cannot recover from. PC is the word offset
// of the offending instruction. Trace holds the chain of frame offsets
// (outermost first) CALL0_VOID had descended through when the error hit,
// read off the VM's call stack.
type Error struct {
	PC      uint32
	Op      string
	Ext     string
	Message string
	Trace   []uint32
}

func (e *Error) Error() string {
	base := fmt.Sprintf("vm error at word %d: %s", e.PC, e.Message)
	if e.Op != "" {
		base = fmt.Sprintf("vm error at word %d (%s/%s): %s", e.PC, e.Op, e.Ext, e.Message)
	}
	if len(e.Trace) == 0 {
		return base
	}

	frames := make([]string, len(e.Trace))
	for i, off := range e.Trace {
		frames[i] = fmt.Sprintf("%d", off)
	}
	return base + " (call trace: " + strings.Join(frames, " -> ") + ")"
}
