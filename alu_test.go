// alu_test.go - ALU Unit Tests
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import "testing"

func newALU() *ALU {
	var f RFLAGSRegister
	f.reset()
	return &ALU{flags: &f}
}

func TestAddSetsZeroFlag(t *testing.T) {
	u := newALU()
	res := u.Add(W8, 0x00, 0x00)
	if res != 0 || !u.flags.Get(FlagZF) {
		t.Fatalf("0+0 = %#x, ZF=%v, want 0 true", res, u.flags.Get(FlagZF))
	}
}

func TestAddSetsCarryOnWrap(t *testing.T) {
	u := newALU()
	res := u.Add(W8, 0xFF, 0x01)
	if res != 0 || !u.flags.Get(FlagCF) {
		t.Fatalf("0xFF+1 = %#x, CF=%v, want 0 true", res, u.flags.Get(FlagCF))
	}
}

func TestAddSetsOverflowOnSignedWrap(t *testing.T) {
	u := newALU()
	res := u.Add(W8, 0x7F, 0x01) // 127 + 1 overflows into negative
	if res != 0x80 || !u.flags.Get(FlagOF) {
		t.Fatalf("0x7F+1 = %#x, OF=%v, want 0x80 true", res, u.flags.Get(FlagOF))
	}
	if !u.flags.Get(FlagSF) {
		t.Fatal("SF should be set for result 0x80")
	}
}

func TestSubSetsCarryOnBorrow(t *testing.T) {
	u := newALU()
	res := u.Sub(W8, 0x00, 0x01)
	if res != 0xFF || !u.flags.Get(FlagCF) {
		t.Fatalf("0-1 = %#x, CF=%v, want 0xFF true", res, u.flags.Get(FlagCF))
	}
}

func TestXorSelfClearsResultAndFlags(t *testing.T) {
	u := newALU()
	u.flags.Set(FlagCF, true)
	u.flags.Set(FlagOF, true)
	res := u.Xor(W32, 0x12345678, 0x12345678)
	if res != 0 {
		t.Fatalf("x^x = %#x, want 0", res)
	}
	if !u.flags.Get(FlagZF) {
		t.Fatal("ZF should be set")
	}
	if u.flags.Get(FlagCF) || u.flags.Get(FlagOF) {
		t.Fatal("CF and OF must be cleared by XOR")
	}
}

func TestAndClearsCarryAndOverflow(t *testing.T) {
	u := newALU()
	u.flags.Set(FlagCF, true)
	u.flags.Set(FlagOF, true)
	res := u.And(W8, 0xFF, 0x0F)
	if res != 0x0F || u.flags.Get(FlagCF) || u.flags.Get(FlagOF) {
		t.Fatalf("0xFF&0x0F = %#x, CF=%v OF=%v, want 0x0F false false", res, u.flags.Get(FlagCF), u.flags.Get(FlagOF))
	}
}

func TestShlByZeroLeavesFlagsUnchanged(t *testing.T) {
	u := newALU()
	u.flags.Set(FlagCF, true)
	res := u.Shl(W8, 0x01, 0)
	if res != 0x01 || !u.flags.Get(FlagCF) {
		t.Fatalf("shl by 0 should not touch flags; res=%#x CF=%v", res, u.flags.Get(FlagCF))
	}
}

func TestShlCarryIsLastBitShiftedOut(t *testing.T) {
	u := newALU()
	res := u.Shl(W8, 0x81, 1)
	if res != 0x02 || !u.flags.Get(FlagCF) {
		t.Fatalf("0x81<<1 = %#x, CF=%v, want 0x02 true", res, u.flags.Get(FlagCF))
	}
}

func TestShrLogicalClearsTopBit(t *testing.T) {
	u := newALU()
	res := u.Shr(W8, 0x80, 1)
	if res != 0x40 {
		t.Fatalf("0x80>>1 = %#x, want 0x40", res)
	}
	if u.flags.Get(FlagSF) {
		t.Fatal("SF should be clear: logical shift never sets the sign bit from a zero fill")
	}
}

func TestSarPreservesSign(t *testing.T) {
	u := newALU()
	res := u.Sar(W8, 0x80, 1) // -128 >> 1 == -64
	if res != 0xC0 {
		t.Fatalf("sar(0x80,1) = %#x, want 0xC0", res)
	}
	if !u.flags.Get(FlagSF) {
		t.Fatal("SF should remain set for a negative result")
	}
}
