// ops_misc.go - Miscellaneous Opcode Handlers (push/pop shorthand, INC/DEC/PUSH groups)
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import "fmt"

// pushReg/popReg build the 0x50-0x57/0x58-0x5F register push/pop shorthand
// handlers, one per register encoded in the low 3 bits of the opcode
// (REX.B-extended).
func pushReg(opcode byte) func(*CPU) {
	return func(c *CPU) {
		idx := opcode & 7
		if c.prefix.rexB {
			idx |= 8
		}
		w := c.fullWidth()
		c.push(w, c.Regs.GetWidth(idx, w, c.prefix.rexPresent))
		c.curMnemonic = fmt.Sprintf("PUSH %s", regName(idx, w, c.prefix.rexPresent))
	}
}

func popReg(opcode byte) func(*CPU) {
	return func(c *CPU) {
		idx := opcode & 7
		if c.prefix.rexB {
			idx |= 8
		}
		w := c.fullWidth()
		c.Regs.SetWidth(idx, w, c.prefix.rexPresent, c.pop(w))
		c.curMnemonic = fmt.Sprintf("POP %s", regName(idx, w, c.prefix.rexPresent))
	}
}

// pushSeg/popSeg build the legacy segment-register push/pop handlers
// (0x06/0x07 ES, 0x16/0x17 SS, 0x1E/0x1F DS; CS has no pop form). Segment
// selectors are always 16 bits wide regardless of operand size.
func pushSeg(seg int) func(*CPU) {
	return func(c *CPU) {
		c.push(c.fullWidth(), uint64(c.Segs[seg].Selector))
		c.curMnemonic = fmt.Sprintf("PUSH %s", segNames[seg])
	}
}

func popSeg(seg int) func(*CPU) {
	return func(c *CPU) {
		c.Segs[seg].Selector = uint16(c.pop(c.fullWidth()))
		c.curMnemonic = fmt.Sprintf("POP %s", segNames[seg])
	}
}

// Group: 0xFE (Eb, /0 INC /1 DEC) and 0xFF (Ev, /0 INC /1 DEC /6 PUSH). The
// other /reg values of 0xFF (near/far CALL, near/far JMP through memory)
// are not implemented and report as unimplemented opcodes.
func (c *CPU) opGrp_Eb() {
	w := c.byteWidth()
	m := c.decodeModRM(w)
	switch m.RegField & 7 {
	case 0:
		c.WriteOperand(m.RM, c.alu.Add(w, c.ReadOperand(m.RM), 1))
		c.curMnemonic = fmt.Sprintf("INC %s", c.operandSyntax(m.RM))
	case 1:
		c.WriteOperand(m.RM, c.alu.Sub(w, c.ReadOperand(m.RM), 1))
		c.curMnemonic = fmt.Sprintf("DEC %s", c.operandSyntax(m.RM))
	default:
		c.opUnimplemented()
	}
}

func (c *CPU) opGrp_Ev() {
	w := c.fullWidth()
	m := c.decodeModRM(w)
	switch m.RegField & 7 {
	case 0:
		c.WriteOperand(m.RM, c.alu.Add(w, c.ReadOperand(m.RM), 1))
		c.curMnemonic = fmt.Sprintf("INC %s", c.operandSyntax(m.RM))
	case 1:
		c.WriteOperand(m.RM, c.alu.Sub(w, c.ReadOperand(m.RM), 1))
		c.curMnemonic = fmt.Sprintf("DEC %s", c.operandSyntax(m.RM))
	case 6:
		c.push(w, c.ReadOperand(m.RM))
		c.curMnemonic = fmt.Sprintf("PUSH %s", c.operandSyntax(m.RM))
	default:
		c.opUnimplemented()
	}
}

// opUnimplemented is the diagnostic + halt fallback for any opcode this core
// does not decode, both genuinely unimplemented encodings and the small
// set of reference-pinned encodings that only have a real-mode arm.
func (c *CPU) opUnimplemented() {
	c.reportUnimplemented()
	c.unimplementedHit = true
	c.Halted = true
}
