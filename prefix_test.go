// prefix_test.go - Prefix Accumulation Unit Tests
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import "testing"

func TestPrefixAccumulateOperandAndAddressSize(t *testing.T) {
	var p restPrefix
	if !p.accumulate(0x66) || !p.opSize {
		t.Fatal("0x66 should be recognized as the operand-size prefix")
	}
	if !p.accumulate(0x67) || !p.addrSize {
		t.Fatal("0x67 should be recognized as the address-size prefix")
	}
}

func TestPrefixAccumulateREXBits(t *testing.T) {
	var p restPrefix
	if !p.accumulate(0x4D) { // REX.W=1 R=1 X=0 B=1
		t.Fatal("0x4D should be recognized as a REX prefix")
	}
	if !p.rexPresent || !p.rexW || !p.rexR || p.rexX || !p.rexB {
		t.Fatalf("rex bits = %+v, want W,R,B set and X clear", p)
	}
}

func TestPrefixAccumulateSegmentOverride(t *testing.T) {
	var p restPrefix
	if !p.accumulate(0x64) || !p.hasSeg || p.seg != SegFS {
		t.Fatal("0x64 should select FS as the override segment")
	}
}

func TestPrefixAccumulateRejectsOpcodeByte(t *testing.T) {
	var p restPrefix
	if p.accumulate(0xB8) {
		t.Fatal("an ordinary opcode byte must not be consumed as a prefix")
	}
}

func TestPrefixResetClearsAllState(t *testing.T) {
	var p restPrefix
	p.accumulate(0x66)
	p.accumulate(0x4D)
	p.reset()
	if p.opSize || p.rexPresent || p.hasSeg || p.lock || p.rep || p.repne {
		t.Fatalf("reset left stale state: %+v", p)
	}
}
