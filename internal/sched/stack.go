package sched

import (
	"encoding/binary"
	"fmt"
	"reflect"
)

// A saved-context image is the byte layout a task's stack holds while the
// task is not running. The constructor lays one down at registration so the
// restore half of the context switch consumes a frame indistinguishable from
// one captured at a genuine suspension point.
//
// Layout, little-endian, from the cursor upward:
//
//	magic(2) status(1) kind(1) pc(8) ret(8) regs(31)
//
// pc is the address execution resumes at, ret the address control falls into
// should the entry function ever return (the exit handler), and regs the
// zeroed general-purpose register file. The status byte carries the
// interrupts-enabled bit so a freshly started task runs with the tick source
// live.
const (
	frameMagic = 0x5CED
	frameRegs  = 31
	frameSize  = 2 + 1 + 1 + 8 + 8 + frameRegs

	statusIntEnabled = 0x80

	frameBoot  = 0x01 // image built by the constructor at registration
	frameSaved = 0x02 // image captured by a warm switch
)

// frame is the decoded form of a saved-context image.
type frame struct {
	status byte
	kind   byte
	pc     uintptr
	ret    uintptr
}

// initStack writes a boot frame for entry at the top of stack and returns
// the cursor, the lowest address of the synthetic frame. A restore consumes
// exactly what was written here.
func initStack(stack []byte, entry, exit uintptr) int {
	cursor := len(stack) - frameSize
	putFrame(stack[cursor:], frame{
		status: statusIntEnabled,
		kind:   frameBoot,
		pc:     entry,
		ret:    exit,
	})
	return cursor
}

func putFrame(b []byte, f frame) {
	binary.LittleEndian.PutUint16(b[0:], frameMagic)
	b[2] = f.status
	b[3] = f.kind
	binary.LittleEndian.PutUint64(b[4:], uint64(f.pc))
	binary.LittleEndian.PutUint64(b[12:], uint64(f.ret))
	for i := 0; i < frameRegs; i++ {
		b[20+i] = 0
	}
}

// readFrame decodes and validates the image at the start of b.
func readFrame(b []byte) (frame, error) {
	if len(b) < frameSize {
		return frame{}, fmt.Errorf("sched: truncated context image (%d bytes)", len(b))
	}
	if m := binary.LittleEndian.Uint16(b[0:]); m != frameMagic {
		return frame{}, fmt.Errorf("sched: corrupt context image (magic %#04x)", m)
	}
	f := frame{
		status: b[2],
		kind:   b[3],
		pc:     uintptr(binary.LittleEndian.Uint64(b[4:])),
		ret:    uintptr(binary.LittleEndian.Uint64(b[12:])),
	}
	if f.kind != frameBoot && f.kind != frameSaved {
		return frame{}, fmt.Errorf("sched: corrupt context image (kind %#02x)", f.kind)
	}
	return f, nil
}

// funcPC resolves the code address of a task entry point.
func funcPC(fn TaskFunc) uintptr {
	if fn == nil {
		return 0
	}
	return reflect.ValueOf(fn).Pointer()
}

// taskExit is the return target encoded into every context image: the address
// control would fall into if a task entry function returned on hardware. The
// host runner routes a returning entry through the scheduler's exit path
// instead of jumping here.
func taskExit() {}

var taskExitPC = funcPC(taskExit)
