// step_test.go - Instruction Step/Run Loop Unit Tests
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import "testing"

// newScenarioCPU builds a CPU ready to run a literal byte image from address
// zero: flat segment bases and IP reset to the image start.
func newScenarioCPU(protectedMode bool) *CPU {
	mem := NewMemory(1 << 16)
	c := NewCPU(mem)
	for i := range c.Segs {
		c.Segs[i].Base = 0
	}
	if protectedMode {
		c.Ctrl.CR0 |= CR0PE
	} else {
		c.Ctrl.CR0 &^= CR0PE
	}
	c.Regs.SetIP(0)
	return c
}

func TestStepAddALImm8NoPrefix(t *testing.T) {
	c := newScenarioCPU(false)
	c.Mem.Write(0, []byte{0x04, 0x05}) // ADD AL, 0x05
	c.Step()

	if got := c.Regs.Get8(RAX, false); got != 0x05 {
		t.Fatalf("AL = %#x, want 0x05", got)
	}
	if c.Flags.Get(FlagCF) || c.Flags.Get(FlagZF) || c.Flags.Get(FlagSF) || c.Flags.Get(FlagOF) || c.Flags.Get(FlagAF) {
		t.Fatalf("unexpected flags: CF=%v ZF=%v SF=%v OF=%v AF=%v",
			c.Flags.Get(FlagCF), c.Flags.Get(FlagZF), c.Flags.Get(FlagSF), c.Flags.Get(FlagOF), c.Flags.Get(FlagAF))
	}
	if !c.Flags.Get(FlagPF) {
		t.Fatal("PF should be set: 0x05 has even parity")
	}
	if c.Regs.IP() != 2 {
		t.Fatalf("IP = %d, want 2", c.Regs.IP())
	}
}

func TestStepAddALImm8Overflow(t *testing.T) {
	c := newScenarioCPU(false)
	c.Mem.Write(0, []byte{0xB0, 0x7F, 0x04, 0x01}) // MOV AL,0x7F ; ADD AL,1
	c.Step()
	c.Step()

	if got := c.Regs.Get8(RAX, false); got != 0x80 {
		t.Fatalf("AL = %#x, want 0x80", got)
	}
	if !c.Flags.Get(FlagOF) || !c.Flags.Get(FlagSF) {
		t.Fatalf("OF=%v SF=%v, want true true", c.Flags.Get(FlagOF), c.Flags.Get(FlagSF))
	}
	if c.Flags.Get(FlagCF) || c.Flags.Get(FlagZF) {
		t.Fatalf("CF=%v ZF=%v, want false false", c.Flags.Get(FlagCF), c.Flags.Get(FlagZF))
	}
}

func TestStepAddALImm8Carry(t *testing.T) {
	c := newScenarioCPU(false)
	c.Mem.Write(0, []byte{0xB0, 0xFF, 0x04, 0x01}) // MOV AL,0xFF ; ADD AL,1
	c.Step()
	c.Step()

	if got := c.Regs.Get8(RAX, false); got != 0x00 {
		t.Fatalf("AL = %#x, want 0x00", got)
	}
	if !c.Flags.Get(FlagCF) || !c.Flags.Get(FlagZF) {
		t.Fatalf("CF=%v ZF=%v, want true true", c.Flags.Get(FlagCF), c.Flags.Get(FlagZF))
	}
	if c.Flags.Get(FlagOF) || c.Flags.Get(FlagSF) {
		t.Fatalf("OF=%v SF=%v, want false false", c.Flags.Get(FlagOF), c.Flags.Get(FlagSF))
	}
}

func TestStepOperandSizePrefixThenAdd(t *testing.T) {
	c := newScenarioCPU(true) // protected mode: default operand size 32, 0x66 narrows to 16
	c.Mem.Write(0, []byte{0x66, 0x05, 0x34, 0x12}) // ADD AX, 0x1234
	c.Step()

	if got := c.Regs.Get16(RAX); got != 0x1234 {
		t.Fatalf("AX = %#x, want 0x1234", got)
	}
	if c.Flags.Get(FlagZF) || c.Flags.Get(FlagSF) {
		t.Fatalf("ZF=%v SF=%v, want false false", c.Flags.Get(FlagZF), c.Flags.Get(FlagSF))
	}
}

func TestStepXorSelfZeroIdiom(t *testing.T) {
	c := newScenarioCPU(false) // 0x31 XOR Ev,Gv only runs outside protected mode
	c.Regs.Set16(RBX, 0x55AA)
	c.Mem.Write(0, []byte{0x31, 0xDB}) // XOR BX, BX
	c.Step()

	if got := c.Regs.Get16(RBX); got != 0 {
		t.Fatalf("BX = %#x, want 0", got)
	}
	if !c.Flags.Get(FlagZF) || !c.Flags.Get(FlagPF) {
		t.Fatalf("ZF=%v PF=%v, want true true", c.Flags.Get(FlagZF), c.Flags.Get(FlagPF))
	}
	if c.Flags.Get(FlagCF) || c.Flags.Get(FlagOF) {
		t.Fatalf("CF=%v OF=%v, want false false", c.Flags.Get(FlagCF), c.Flags.Get(FlagOF))
	}
}

func TestStepAlignmentFaultBlocksWrite(t *testing.T) {
	c := newScenarioCPU(true) // protected mode, CPL3, AC armed: AC should fire
	c.Ctrl.CR0 |= CR0AM
	c.Flags.Set(FlagAC, true)
	c.Segs[SegCS].Selector = 3
	c.Regs.Set32(RAX, 0x101) // misaligned dword address
	c.Mem.WriteByte(0x101, 0xAA)
	c.Mem.Write(0, []byte{0x01, 0x00}) // ADD [EAX], EAX
	c.Step()

	if c.LastFault.Kind != FaultAC {
		t.Fatalf("LastFault = %+v, want AC", c.LastFault)
	}
	if got := c.Mem.ReadByte(0x101); got != 0xAA {
		t.Fatalf("memory at the fault address changed: %#x, want untouched 0xAA", got)
	}
}

func TestPushStackBoundsFaultLeavesRSPUntouched(t *testing.T) {
	c := newScenarioCPU(true)
	c.Segs[SegSS].Limit = 0x10
	c.Regs.Set64(RSP, 0x2000)
	startSP := c.Regs.GetWidth(RSP, W64, false)

	c.push(W32, 0x12345678)

	if c.LastFault.Kind != FaultSS {
		t.Fatalf("LastFault = %+v, want SS", c.LastFault)
	}
	if got := c.Regs.GetWidth(RSP, W64, false); got != startSP {
		t.Fatalf("RSP = %#x, want unchanged %#x", got, startSP)
	}
}

func TestStepShortBackwardJMP(t *testing.T) {
	c := newScenarioCPU(false) // real mode: default operand size 16, so 0xE9 reads rel16
	c.Regs.SetIP(0xFFF0)
	c.Mem.Write(0xFFF0, []byte{0xE9, 0xFD, 0xFF}) // JMP rel16 -3
	startIP := c.Regs.IP()
	c.Step()

	if c.Regs.IP() != startIP {
		t.Fatalf("IP = %#x, want %#x (start, after the 3-byte instruction net -3)", c.Regs.IP(), startIP)
	}
}
