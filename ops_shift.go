// ops_shift.go - Shift/Rotate Opcode Handlers (Group 2)
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import "fmt"

// aluShiftOp is the shape of a width-specific shift/rotate primitive:
// result = op(width, value, count).
type aluShiftOp func(Width, uint64, uint8) uint64

// rol/ror/rcl/rcr round out the Group 2 family alongside the pinned SHL and
// the SHR/SAR primitives in alu.go. They are enrichment beyond the pinned
// handler set, built in the same width-monomorphic style.
func (c *CPU) rol(w Width, v uint64, count uint8) uint64 {
	bits := uint8(w)
	count %= bits
	mask := widthMask(w)
	v &= mask
	if count == 0 {
		return v
	}
	res := ((v << count) | (v >> (bits - count))) & mask
	top := topBit(w)
	c.Flags.Set(FlagCF, res&1 != 0)
	if count == 1 {
		c.Flags.Set(FlagOF, (res&top != 0) != (res&1 != 0))
	}
	return res
}

func (c *CPU) ror(w Width, v uint64, count uint8) uint64 {
	bits := uint8(w)
	count %= bits
	mask := widthMask(w)
	v &= mask
	if count == 0 {
		return v
	}
	res := ((v >> count) | (v << (bits - count))) & mask
	top := topBit(w)
	c.Flags.Set(FlagCF, res&top != 0)
	if count == 1 {
		second := (res << 1) & top
		c.Flags.Set(FlagOF, (res&top != 0) != (second != 0))
	}
	return res
}

func (c *CPU) rcl(w Width, v uint64, count uint8) uint64 {
	bits := uint(w) + 1
	count8 := count % uint8(bits)
	mask := widthMask(w)
	v &= mask
	cf := uint64(0)
	if c.Flags.Get(FlagCF) {
		cf = 1
	}
	res, carryOut := v, cf
	for i := uint8(0); i < count8; i++ {
		newCarry := (res >> (uint(w) - 1)) & 1
		res = ((res << 1) | carryOut) & mask
		carryOut = newCarry
	}
	c.Flags.Set(FlagCF, carryOut != 0)
	if count8 == 1 {
		top := topBit(w)
		c.Flags.Set(FlagOF, (res&top != 0) != (carryOut != 0))
	}
	return res
}

func (c *CPU) rcr(w Width, v uint64, count uint8) uint64 {
	bits := uint(w) + 1
	count8 := count % uint8(bits)
	mask := widthMask(w)
	v &= mask
	cf := uint64(0)
	if c.Flags.Get(FlagCF) {
		cf = 1
	}
	res, carryIn := v, cf
	var carryOut uint64
	for i := uint8(0); i < count8; i++ {
		carryOut = res & 1
		res = (res >> 1) | (carryIn << (uint(w) - 1))
		carryIn = carryOut
	}
	c.Flags.Set(FlagCF, carryOut != 0)
	if count8 == 1 {
		top := topBit(w)
		second := (res << 1) & top
		c.Flags.Set(FlagOF, (res&top != 0) != (second != 0))
	}
	return res
}

func (c *CPU) initGrp2() {
	c.grp2Ops = [8]aluShiftOp{
		c.rol,
		c.ror,
		c.rcl,
		c.rcr,
		c.alu.Shl,
		c.alu.Shr,
		c.alu.Shl, // 6 is an undocumented SHL alias on real hardware
		c.alu.Sar,
	}
}

// grp2Names names the eight Group 2 shift/rotate ops in ModR/M reg-field
// order; index 6 shares SHL's mnemonic since it is the same undocumented
// alias initGrp2 wires it to.
var grp2Names = [8]string{"ROL", "ROR", "RCL", "RCR", "SHL", "SHR", "SHL", "SAR"}

func (c *CPU) grp2(m ModRM, w Width, count uint8) {
	idx := m.RegField & 7
	op := c.grp2Ops[idx]
	res := op(w, c.ReadOperand(m.RM), count)
	c.WriteOperand(m.RM, res)
	c.curMnemonic = fmt.Sprintf("%s %s, 0x%X", grp2Names[idx], c.operandSyntax(m.RM), count)
}

// 0xC0/0xC1: Eb/Ev, Ib (shift by an immediate count).
func (c *CPU) opGrp2_Eb_Ib() {
	w := c.byteWidth()
	m := c.decodeModRM(w)
	count := c.fetch8()
	c.grp2(m, w, count)
}

func (c *CPU) opGrp2_Ev_Ib() {
	w := c.fullWidth()
	m := c.decodeModRM(w)
	count := c.fetch8()
	c.grp2(m, w, count)
}

// 0xD0/0xD1: Eb/Ev, 1 (shift by a fixed count of one).
func (c *CPU) opGrp2_Eb_1() {
	w := c.byteWidth()
	m := c.decodeModRM(w)
	c.grp2(m, w, 1)
}

func (c *CPU) opGrp2_Ev_1() {
	w := c.fullWidth()
	m := c.decodeModRM(w)
	c.grp2(m, w, 1)
}

// 0xD2/0xD3: Eb/Ev, CL (shift count taken from CL).
func (c *CPU) opGrp2_Eb_CL() {
	w := c.byteWidth()
	m := c.decodeModRM(w)
	count := c.Regs.Get8(RCX, c.prefix.rexPresent)
	c.grp2(m, w, count)
}

func (c *CPU) opGrp2_Ev_CL() {
	w := c.fullWidth()
	m := c.decodeModRM(w)
	count := c.Regs.Get8(RCX, c.prefix.rexPresent)
	c.grp2(m, w, count)
}
