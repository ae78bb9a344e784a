// Package vm implements the VirtualMachine: a register file, a
// per-invocation data region and a dispatch loop executing one frame at a
// time, recursing through CALL0_VOID for nested calls (spec §4.8).
package vm

import (
	"encoding/binary"

	"arctic.dev/arctic/pkg/bytecode"
	"arctic.dev/arctic/pkg/utils"
)

// maxCallDepth bounds CALL0_VOID recursion so a self-recursive script
// fails with an Error instead of exhausting the Go goroutine stack.
const maxCallDepth = 4096

// VM holds the linked ScriptImage a BytecodeGenerator produced. The image
// is read-only after construction; callStack is pushed and popped by each
// frame while a call runs, so one VM runs one call at a time. Call and
// CallWithMemory may be invoked any number of times and are independent of
// one another: every frame gets a fresh register file and data region.
type VM struct {
	words     []bytecode.Word
	offsets   map[string]uint32
	callStack utils.Stack[uint32]
}

// New builds a VM over a linked Image.
func New(image bytecode.Image) *VM {
	return &VM{words: image.Words, offsets: image.Offsets}
}

// frameTrace reads the live call stack back out in outermost-first order,
// the shape a fatal Error's Trace reports it in.
func (m *VM) frameTrace() []uint32 {
	var reversed []uint32
	for off := range m.callStack.Iterator() {
		reversed = append(reversed, off)
	}
	trace := make([]uint32, len(reversed))
	for i, off := range reversed {
		trace[len(trace)-1-i] = off
	}
	return trace
}

// Call executes the named function's frame and returns its result
// (whatever R0 holds when the frame's END is reached).
func (m *VM) Call(name string) (uint32, error) {
	result, _, err := m.CallWithMemory(name)
	return result, err
}

// CallWithMemory is Call plus the entry frame's own data region as it
// stood at END, the introspection hook spec §8's memory[...]-based
// testable properties need (nested calls' data regions are not
// returned, only the outermost frame's).
func (m *VM) CallWithMemory(name string) (uint32, []byte, error) {
	offset, ok := m.offsets[name]
	if !ok {
		return 0, nil, &Error{Message: "call to unknown function " + name}
	}
	return m.runFrame(offset, 0)
}

// runFrame executes the frame whose symbol-table offset is 'frameOffset'
// (the same raw value CallPlaceholder/linkCalls leave in TP at a call
// site). Per spec §4.8, execution actually starts 2 words past that
// offset, skipping the frame's leading META(version) pair and landing on
// its META(stack_size) pair.
func (m *VM) runFrame(frameOffset uint32, depth int) (result uint32, mem []byte, err error) {
	if depth > maxCallDepth {
		return 0, nil, &Error{PC: frameOffset, Message: "call stack exceeded maximum depth"}
	}

	m.callStack.Push(frameOffset)
	defer func() {
		if verr, ok := err.(*Error); ok && verr.Trace == nil {
			verr.Trace = m.frameTrace()
		}
		m.callStack.Pop()
	}()

	start := frameOffset + 2
	if err := m.expect(start, bytecode.META); err != nil {
		return 0, nil, err
	}
	stackSize := m.wordAt(start + 1).Uint32()
	if err := m.expect(start+2, bytecode.EXEC); err != nil {
		return 0, nil, err
	}

	ip := start + 4
	data := make([]byte, stackSize+32)
	var regs [bytecode.NumRegisters]uint32

	for {
		instr, err := m.fetch(ip)
		if err != nil {
			return 0, nil, err
		}
		op, ext, reg := instr.Decode()

		switch op {
		case bytecode.END:
			return regs[bytecode.R0], data, nil

		case bytecode.MOVR:
			ip++
			switch ext {
			case bytecode.Value, bytecode.Func:
				v, err := m.fetch(ip)
				if err != nil {
					return 0, nil, err
				}
				regs[reg] = v.Uint32()
				ip++
			case bytecode.Reg:
				v, err := m.fetch(ip)
				if err != nil {
					return 0, nil, err
				}
				regs[reg] = regs[bytecode.OpReg(v.Uint32())]
				ip++
			case bytecode.Addr:
				v, err := readU32(data, regs[bytecode.PTR])
				if err != nil {
					return 0, nil, m.fatal(ip, op, ext, err.Error())
				}
				regs[reg] = v
			case bytecode.Stack:
				v, err := readU32(data, stackSize+regs[bytecode.SP])
				if err != nil {
					return 0, nil, m.fatal(ip, op, ext, err.Error())
				}
				regs[reg] = v
			default:
				return 0, nil, m.fatal(ip, op, ext, "unsupported MOVR extension")
			}

		case bytecode.MOVA:
			switch ext {
			case bytecode.Value:
				ip++
				v, err := m.fetch(ip)
				if err != nil {
					return 0, nil, err
				}
				if err := writeU32(data, regs[bytecode.PTR], v.Uint32()); err != nil {
					return 0, nil, m.fatal(ip, op, ext, err.Error())
				}
			case bytecode.Reg, bytecode.None:
				if err := writeU32(data, regs[bytecode.PTR], regs[reg]); err != nil {
					return 0, nil, m.fatal(ip, op, ext, err.Error())
				}
			default:
				return 0, nil, m.fatal(ip, op, ext, "unsupported MOVA extension")
			}
			ip++

		case bytecode.MOVS:
			if err := writeU32(data, stackSize+regs[bytecode.SP], regs[reg]); err != nil {
				return 0, nil, m.fatal(ip, op, ext, err.Error())
			}
			ip++

		case bytecode.ADD32, bytecode.SUB32, bytecode.MUL32, bytecode.DIV32:
			switch ext {
			case bytecode.ValueSP:
				delta := uint32(reg)
				switch op {
				case bytecode.ADD32:
					regs[bytecode.SP] += delta
				case bytecode.SUB32:
					regs[bytecode.SP] -= delta
				default:
					return 0, nil, m.fatal(ip, op, ext, "only ADD32/SUB32 support VALUE_SP")
				}
			case bytecode.Reg:
				src := regs[reg]
				switch op {
				case bytecode.ADD32:
					regs[bytecode.R0] += src
				case bytecode.SUB32:
					regs[bytecode.R0] -= src
				case bytecode.MUL32:
					regs[bytecode.R0] *= src
				case bytecode.DIV32:
					if src == 0 {
						return 0, nil, m.fatal(ip, op, ext, "division by zero")
					}
					regs[bytecode.R0] /= src
				}
			default:
				return 0, nil, m.fatal(ip, op, ext, "unsupported arithmetic extension")
			}
			ip++

		case bytecode.CALL0Void:
			result, _, err := m.runFrame(regs[bytecode.TP], depth+1)
			if err != nil {
				return 0, nil, err
			}
			regs[bytecode.R0] = result
			ip++

		default:
			return 0, nil, m.fatal(ip, op, ext, "unsupported opcode")
		}
	}
}

func (m *VM) wordAt(i uint32) bytecode.Word {
	if int(i) >= len(m.words) {
		return 0
	}
	return m.words[i]
}

func (m *VM) fetch(i uint32) (bytecode.Word, error) {
	if int(i) >= len(m.words) {
		return 0, &Error{PC: i, Message: "fell off the end of the image"}
	}
	return m.words[i], nil
}

func (m *VM) expect(i uint32, want bytecode.OpCode) error {
	w, err := m.fetch(i)
	if err != nil {
		return err
	}
	if op, _, _ := w.Decode(); op != want {
		return &Error{PC: i, Message: "expected " + want.String() + " header word"}
	}
	return nil
}

func (m *VM) fatal(pc uint32, op bytecode.OpCode, ext bytecode.OpExt, msg string) error {
	return &Error{PC: pc, Op: op.String(), Ext: ext.String(), Message: msg}
}

func readU32(data []byte, offset uint32) (uint32, error) {
	if int(offset)+4 > len(data) {
		return 0, errOutOfBounds(offset)
	}
	return binary.BigEndian.Uint32(data[offset:]), nil
}

func writeU32(data []byte, offset uint32, v uint32) error {
	if int(offset)+4 > len(data) {
		return errOutOfBounds(offset)
	}
	binary.BigEndian.PutUint32(data[offset:], v)
	return nil
}

func errOutOfBounds(offset uint32) error {
	return &Error{PC: offset, Message: "memory access out of bounds"}
}
