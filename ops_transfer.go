// ops_transfer.go - Data-Transfer Opcode Handlers (MOV/XCHG/LEA/MOVZX/MOVSX)
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import "fmt"

// push writes v onto the stack at width w and adjusts RSP/ESP/SP by w/8
// bytes, using the current address-size stack pointer width. The stack
// bounds check runs before anything is written, and RSP moves only once the
// write has committed, so a fault leaves the stack pointer untouched.
func (c *CPU) push(w Width, v uint64) {
	spWidth := c.addrWidth()
	sp := c.Regs.GetWidth(RSP, spWidth, c.prefix.rexPresent) - uint64(w)/8
	addr := (sp + uint64(c.Segs[SegSS].Base)) & 0xFFFFFFFF
	if ev := c.classify(c.checkStackBounds(addr, w)); ev.Kind != FaultNone {
		c.raiseFault(ev)
		return
	}
	if !c.writeMem(addr, w, v) {
		return
	}
	c.Regs.SetWidth(RSP, spWidth, c.prefix.rexPresent, sp)
}

func (c *CPU) pop(w Width) uint64 {
	spWidth := c.addrWidth()
	sp := c.Regs.GetWidth(RSP, spWidth, c.prefix.rexPresent)
	addr := (sp + uint64(c.Segs[SegSS].Base)) & 0xFFFFFFFF
	if ev := c.classify(c.checkStackBounds(addr, w)); ev.Kind != FaultNone {
		c.raiseFault(ev)
		return 0
	}
	v := c.readMem(addr, w)
	c.Regs.SetWidth(RSP, spWidth, c.prefix.rexPresent, sp+uint64(w)/8)
	return v
}

// MOV register/memory family: 0x88/0x8A (byte) and 0x8B (full width) are
// available in both real and protected mode. 0x89 (MOV Ev,Gv) is
// real-mode-only, matching the reference implementation this was distilled
// from, which never grew a protected-mode arm for that one encoding.
func (c *CPU) opMOV_Eb_Gb() { c.execRM(c.byteWidth(), false, true, movOp, "MOV") }
func (c *CPU) opMOV_Ev_Gv() {
	if c.Ctrl.CR0&CR0PE != 0 {
		c.opUnimplemented()
		return
	}
	c.execRM(c.fullWidth(), false, true, movOp, "MOV")
}
func (c *CPU) opMOV_Gb_Eb() { c.execRM(c.byteWidth(), true, true, movOp, "MOV") }
func (c *CPU) opMOV_Gv_Ev() { c.execRM(c.fullWidth(), true, true, movOp, "MOV") }

func movOp(_ Width, _, src uint64) uint64 { return src }

// MOV segment-register family. 0x8C (store Sreg into Ev) is real-mode-only,
// matching the same reference constraint as 0x89 above. 0x8E (load Ev into
// Sreg) has no such constraint in the source material and is carried as a
// general enrichment.
func (c *CPU) opMOV_Ev_Sw() {
	if c.Ctrl.CR0&CR0PE != 0 {
		c.opUnimplemented()
		return
	}
	m := c.decodeModRM(W16)
	sel := c.Segs[m.RegField&7].Selector
	c.WriteOperand(m.RM, uint64(sel))
	c.curMnemonic = fmt.Sprintf("MOV %s, %s", c.operandSyntax(m.RM), segNames[m.RegField&7])
}

func (c *CPU) opMOV_Sw_Ev() {
	m := c.decodeModRM(W16)
	v := uint16(c.ReadOperand(m.RM))
	c.Segs[m.RegField&7].Selector = v
	c.curMnemonic = fmt.Sprintf("MOV %s, %s", segNames[m.RegField&7], c.operandSyntax(m.RM))
}

// LEA: 0x8D Gv,M, the decoded address itself is the value, not a memory
// load. When the operand happens to decode as a register (no valid
// encoding in practice, since LEA always specifies a memory form) this
// degrades to loading the raw r/m register's value, matching common
// reference behaviour for the malformed encoding.
func (c *CPU) opLEA_Gv_M() {
	w := c.fullWidth()
	m := c.decodeModRM(w)
	var v uint64
	if m.RM.Kind == OperandMem {
		v = m.RM.Addr
	} else {
		v = c.ReadOperand(m.RM)
	}
	c.Regs.SetWidth(m.RegField, w, c.prefix.rexPresent, v)
	c.curMnemonic = fmt.Sprintf("LEA %s, %s", regName(m.RegField, w, c.prefix.rexPresent), c.operandSyntax(m.RM))
}

// XCHG: 0x86/0x87 (register/memory form) and 0x90-0x97 (accumulator
// shorthand; 0x90 with no REX.B is the architectural NOP).
func (c *CPU) opXCHG_Eb_Gb() {
	w := c.byteWidth()
	m := c.decodeModRM(w)
	reg := OperandRef{Kind: OperandReg, Reg: m.RegField, Width: w, RexPresent: c.prefix.rexPresent}
	a, b := c.ReadOperand(m.RM), c.ReadOperand(reg)
	c.WriteOperand(m.RM, b)
	c.WriteOperand(reg, a)
	c.curMnemonic = fmt.Sprintf("XCHG %s, %s", c.operandSyntax(m.RM), c.operandSyntax(reg))
}

func (c *CPU) opXCHG_Ev_Gv() {
	w := c.fullWidth()
	m := c.decodeModRM(w)
	reg := OperandRef{Kind: OperandReg, Reg: m.RegField, Width: w, RexPresent: c.prefix.rexPresent}
	a, b := c.ReadOperand(m.RM), c.ReadOperand(reg)
	c.WriteOperand(m.RM, b)
	c.WriteOperand(reg, a)
	c.curMnemonic = fmt.Sprintf("XCHG %s, %s", c.operandSyntax(m.RM), c.operandSyntax(reg))
}

func xchgAccShorthand(opcode byte) func(*CPU) {
	return func(c *CPU) {
		idx := opcode & 7
		if c.prefix.rexB {
			idx |= 8
		}
		if idx == RAX {
			c.curMnemonic = "NOP"
			return // 0x90 with no REX.B: NOP
		}
		w := c.fullWidth()
		a := c.Regs.GetWidth(RAX, w, c.prefix.rexPresent)
		b := c.Regs.GetWidth(idx, w, c.prefix.rexPresent)
		c.Regs.SetWidth(RAX, w, c.prefix.rexPresent, b)
		c.Regs.SetWidth(idx, w, c.prefix.rexPresent, a)
		c.curMnemonic = fmt.Sprintf("XCHG %s, %s", regName(RAX, w, c.prefix.rexPresent), regName(idx, w, c.prefix.rexPresent))
	}
}

// MOV immediate family: 0xB0-0xB7 (byte register, Ib), 0xB8-0xBF (full-width
// register, Iv/Iz; this range covers the pinned MOV r32,imm32 form), and
// 0xC6/0xC7 (r/m, immediate).
func movRegImm8(opcode byte) func(*CPU) {
	return func(c *CPU) {
		idx := opcode & 7
		if c.prefix.rexB {
			idx |= 8
		}
		imm := c.fetch8()
		c.Regs.Set8(idx, c.prefix.rexPresent, imm)
		c.curMnemonic = fmt.Sprintf("MOV %s, 0x%X", regName(idx, W8, c.prefix.rexPresent), imm)
	}
}

func movRegImmFull(opcode byte) func(*CPU) {
	return func(c *CPU) {
		idx := opcode & 7
		if c.prefix.rexB {
			idx |= 8
		}
		w := c.fullWidth()
		imm := c.fetchImm(w)
		c.Regs.SetWidth(idx, w, c.prefix.rexPresent, imm)
		c.curMnemonic = fmt.Sprintf("MOV %s, 0x%X", regName(idx, w, c.prefix.rexPresent), imm)
	}
}

func (c *CPU) opMOV_Eb_Ib() {
	w := c.byteWidth()
	m := c.decodeModRM(w)
	imm := c.fetch8()
	c.WriteOperand(m.RM, uint64(imm))
	c.curMnemonic = fmt.Sprintf("MOV %s, 0x%X", c.operandSyntax(m.RM), imm)
}

// opMOV_Ev_Iz reads an Iz-encoded immediate: fetchImmZ caps it at 32 bits
// and sign-extends for the rex.W destination width, rather than reading a
// true 8-byte immediate for the 64-bit form.
func (c *CPU) opMOV_Ev_Iz() {
	w := c.fullWidth()
	m := c.decodeModRM(w)
	imm := c.fetchImmZ(w)
	c.WriteOperand(m.RM, imm)
	c.curMnemonic = fmt.Sprintf("MOV %s, 0x%X", c.operandSyntax(m.RM), imm)
}

// MOVZX/MOVSX: 0x0F 0xB6/0xB7 (zero-extend byte/word source) and
// 0x0F 0xBE/0xBF (sign-extend byte/word source) into a full-width register.
func movExtend(srcW Width, signed bool) func(*CPU) {
	return func(c *CPU) {
		dstW := c.fullWidth()
		m := c.decodeModRM(srcW)
		v := c.ReadOperand(m.RM)
		if signed {
			v = signExtendTo64(v, srcW)
		}
		c.Regs.SetWidth(m.RegField, dstW, c.prefix.rexPresent, v)
		name := "MOVZX"
		if signed {
			name = "MOVSX"
		}
		c.curMnemonic = fmt.Sprintf("%s %s, %s", name, regName(m.RegField, dstW, c.prefix.rexPresent), c.operandSyntax(m.RM))
	}
}

// CBW/CWDE/CDQE (0x98) and CWD/CDQ/CQO (0x99), sign-extending the
// accumulator into itself or into DX:AX/EDX:EAX/RDX:RAX.
func (c *CPU) opCBW() {
	w := c.fullWidth()
	switch w {
	case W16:
		c.Regs.Set16(RAX, uint16(int8(c.Regs.Get8(RAX, c.prefix.rexPresent))))
		c.curMnemonic = "CBW"
	case W32:
		c.Regs.Set32(RAX, uint32(int16(c.Regs.Get16(RAX))))
		c.curMnemonic = "CWDE"
	default:
		c.Regs.Set64(RAX, uint64(int32(c.Regs.Get32(RAX))))
		c.curMnemonic = "CDQE"
	}
}

func (c *CPU) opCWD() {
	w := c.fullWidth()
	switch w {
	case W16:
		ax := int16(c.Regs.Get16(RAX))
		if ax < 0 {
			c.Regs.Set16(RDX, 0xFFFF)
		} else {
			c.Regs.Set16(RDX, 0)
		}
		c.curMnemonic = "CWD"
	case W32:
		eax := int32(c.Regs.Get32(RAX))
		if eax < 0 {
			c.Regs.Set32(RDX, 0xFFFFFFFF)
		} else {
			c.Regs.Set32(RDX, 0)
		}
		c.curMnemonic = "CDQ"
	default:
		rax := int64(c.Regs.Get64(RAX))
		if rax < 0 {
			c.Regs.Set64(RDX, ^uint64(0))
		} else {
			c.Regs.Set64(RDX, 0)
		}
		c.curMnemonic = "CQO"
	}
}
