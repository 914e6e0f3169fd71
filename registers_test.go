// registers_test.go - Register File Unit Tests
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import "testing"

func TestSet8HighByteAliasingWithoutREX(t *testing.T) {
	var r RegisterFile
	r.Set64(RAX, 0x1122)
	r.Set8(4, false, 0xFF) // AH, no REX present
	if got := r.Get64(RAX); got != 0xFF22 {
		t.Fatalf("RAX = %#x, want 0xFF22 (AH overwritten)", got)
	}
	if got := r.Get8(4, false); got != 0xFF {
		t.Fatalf("AH = %#x, want 0xFF", got)
	}
	if got := r.Get8(0, false); got != 0x22 {
		t.Fatalf("AL = %#x, want unchanged 0x22", got)
	}
}

func TestSet8LowByteWithREX(t *testing.T) {
	var r RegisterFile
	r.Set64(RSP, 0xAABBCCDD)
	r.Set8(4, true, 0x11) // SPL, REX present
	if got := r.Get64(RSP); got != 0xAABBCC11 {
		t.Fatalf("RSP = %#x, want 0xAABBCC11", got)
	}
}

func TestSet32ZeroExtends(t *testing.T) {
	var r RegisterFile
	r.Set64(RBX, 0xFFFFFFFFFFFFFFFF)
	r.Set32(RBX, 0x12345678)
	if got := r.Get64(RBX); got != 0x12345678 {
		t.Fatalf("RBX = %#x, want 0x12345678 (upper half cleared)", got)
	}
}

func TestIP(t *testing.T) {
	var r RegisterFile
	r.SetIP(0xFFF0)
	if got := r.IP(); got != 0xFFF0 {
		t.Fatalf("IP = %#x, want 0xFFF0", got)
	}
}

func TestRFLAGSReservedBits(t *testing.T) {
	var f RFLAGSRegister
	f.reset()
	if f.Raw()&2 == 0 {
		t.Fatal("bit 1 must always be set")
	}
	f.SetRaw(^uint64(0))
	if f.Raw()&(1<<3) != 0 {
		t.Fatal("bit 3 must always be clear")
	}
	if f.Raw()&2 == 0 {
		t.Fatal("bit 1 must always be set even after SetRaw")
	}
}

func TestRFLAGSIOPL(t *testing.T) {
	var f RFLAGSRegister
	f.reset()
	f.Set(FlagIOPL, true)
	if got := f.IOPL(); got != 3 {
		t.Fatalf("IOPL = %d, want 3", got)
	}
}

func TestControlRegistersReset(t *testing.T) {
	var c ControlRegisters
	c.reset()
	if c.CR0 != CR0ET|CR0MP|CR0NE {
		t.Fatalf("CR0 = %#x, want %#x", c.CR0, CR0ET|CR0MP|CR0NE)
	}
	if c.DR6 != 0xFFFF0FF0 {
		t.Fatalf("DR6 = %#x, want 0xFFFF0FF0", c.DR6)
	}
	if c.DR7 != 1 {
		t.Fatalf("DR7 = %d, want 1", c.DR7)
	}
}
