package sched

import (
	"encoding/binary"
	"reflect"
	"testing"
)

func testEntry() {}

func TestInitStackLayout(t *testing.T) {
	var stack [TaskStackSize]byte
	entry := funcPC(testEntry)

	cursor := initStack(stack[:], entry, taskExitPC)

	if want := TaskStackSize - frameSize; cursor != want {
		t.Fatalf("cursor = %d, want %d", cursor, want)
	}
	if m := binary.LittleEndian.Uint16(stack[cursor:]); m != frameMagic {
		t.Fatalf("magic = %#04x, want %#04x", m, frameMagic)
	}

	f, err := readFrame(stack[cursor:])
	if err != nil {
		t.Fatalf("readFrame() error = %v", err)
	}
	if f.kind != frameBoot {
		t.Errorf("kind = %#02x, want boot image", f.kind)
	}
	if f.status&statusIntEnabled == 0 {
		t.Errorf("status = %#02x, interrupts-enabled bit not set", f.status)
	}
	if f.pc != entry {
		t.Errorf("pc = %#x, want entry %#x", f.pc, entry)
	}
	if f.ret != taskExitPC {
		t.Errorf("ret = %#x, want exit handler %#x", f.ret, taskExitPC)
	}

	// general-purpose register file must be in a defined zero state
	for i, b := range stack[cursor+20 : cursor+frameSize] {
		if b != 0 {
			t.Fatalf("reg byte %d = %#02x, want 0", i, b)
		}
	}
}

func TestFramePushPopRoundtrip(t *testing.T) {
	tk := task{cursor: TaskStackSize}

	in := frame{status: statusIntEnabled, kind: frameSaved, pc: 0x1122334455, ret: taskExitPC}
	tk.pushFrame(in)

	if want := TaskStackSize - frameSize; tk.cursor != want {
		t.Fatalf("cursor after push = %d, want %d", tk.cursor, want)
	}

	out, err := tk.popFrame()
	if err != nil {
		t.Fatalf("popFrame() error = %v", err)
	}
	if out != in {
		t.Errorf("popFrame() = %+v, want %+v", out, in)
	}
	if tk.cursor != TaskStackSize {
		t.Errorf("cursor after pop = %d, want %d", tk.cursor, TaskStackSize)
	}
}

func TestReadFrameRejectsCorruptImages(t *testing.T) {
	var buf [frameSize]byte

	if _, err := readFrame(buf[:frameSize-1]); err == nil {
		t.Errorf("readFrame() accepted a truncated image")
	}

	// bad magic
	putFrame(buf[:], frame{kind: frameBoot})
	buf[0] ^= 0xFF
	if _, err := readFrame(buf[:]); err == nil {
		t.Errorf("readFrame() accepted a bad magic")
	}

	// bad kind
	putFrame(buf[:], frame{kind: 0x7F})
	if _, err := readFrame(buf[:]); err == nil {
		t.Errorf("readFrame() accepted an unknown frame kind")
	}
}

func TestPushFrameOverflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("pushFrame() on a full stack did not panic")
		}
	}()
	tk := task{cursor: frameSize - 1}
	tk.pushFrame(frame{kind: frameSaved})
}

func TestFuncPCMatchesReflectPointer(t *testing.T) {
	got := funcPC(testEntry)
	want := reflect.ValueOf(testEntry).Pointer()

	if got == 0 || want == 0 {
		t.Fatalf("expected non-zero function pointers, got=%#x want=%#x", got, want)
	}
	if got != want {
		t.Fatalf("funcPC mismatch: got=%#x want=%#x", got, want)
	}
	if funcPC(nil) != 0 {
		t.Errorf("funcPC(nil) = %#x, want 0", funcPC(nil))
	}
}
