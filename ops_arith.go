// ops_arith.go - Arithmetic/Logic Opcode Handlers (ADD/OR/ADC/SBB/AND/SUB/XOR/CMP/TEST)
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import "fmt"

// aluBinOp is the shape every width-specific ALU primitive shares:
// result = op(width, destValue, srcValue), with flags set as a side effect.
type aluBinOp func(Width, uint64, uint64) uint64

// execRM decodes one ModR/M byte at width w and runs op over the register
// and r/m operands it names. toReg selects the classic Intel encoding
// direction: true means "reg <- op(reg, rm)" (the /r with d=1 forms, e.g.
// 0x02 ADD Gb,Eb), false means "rm <- op(rm, reg)" (d=0 forms, e.g. 0x00 ADD
// Eb,Gb). store is false for the compare/test family, which computes flags
// and discards the result. name is the mnemonic assembled into the trace
// line; the destination/source order in the printed line matches dst/src
// exactly as the instruction would assemble.
func (c *CPU) execRM(w Width, toReg, store bool, op aluBinOp, name string) {
	m := c.decodeModRM(w)
	regRef := OperandRef{Kind: OperandReg, Reg: m.RegField, Width: w, RexPresent: c.prefix.rexPresent}

	dst, src := m.RM, regRef
	if toReg {
		dst, src = regRef, m.RM
	}

	res := op(w, c.ReadOperand(dst), c.ReadOperand(src))
	if store {
		c.WriteOperand(dst, res)
	}
	c.curMnemonic = fmt.Sprintf("%s %s, %s", name, c.operandSyntax(dst), c.operandSyntax(src))
}

// execAcc implements the accumulator-immediate encodings (0x04 ADD AL,Ib /
// 0x05 ADD eAX,Iz and their family siblings). fetchImmZ caps the immediate
// at 32 bits and sign-extends for the W64 form, since rex.W widens the
// accumulator but not an Iz-encoded immediate.
func (c *CPU) execAcc(w Width, store bool, op aluBinOp, name string) {
	imm := c.fetchImmZ(w)
	dst := OperandRef{Kind: OperandReg, Reg: RAX, Width: w, RexPresent: c.prefix.rexPresent}
	res := op(w, c.ReadOperand(dst), imm)
	if store {
		c.WriteOperand(dst, res)
	}
	c.curMnemonic = fmt.Sprintf("%s %s, 0x%X", name, c.operandSyntax(dst), imm)
}

func (c *CPU) byteWidth() Width { return c.operandWidth(true) }
func (c *CPU) fullWidth() Width { return c.operandWidth(false) }

// ADD: 0x00-0x05
func (c *CPU) opADD_Eb_Gb()  { c.execRM(c.byteWidth(), false, true, c.alu.Add, "ADD") }
func (c *CPU) opADD_Ev_Gv()  { c.execRM(c.fullWidth(), false, true, c.alu.Add, "ADD") }
func (c *CPU) opADD_Gb_Eb()  { c.execRM(c.byteWidth(), true, true, c.alu.Add, "ADD") }
func (c *CPU) opADD_Gv_Ev()  { c.execRM(c.fullWidth(), true, true, c.alu.Add, "ADD") }
func (c *CPU) opADD_AL_Ib()  { c.execAcc(c.byteWidth(), true, c.alu.Add, "ADD") }
func (c *CPU) opADD_eAX_Iz() { c.execAcc(c.fullWidth(), true, c.alu.Add, "ADD") }

// OR: 0x08-0x0D
func (c *CPU) opOR_Eb_Gb()  { c.execRM(c.byteWidth(), false, true, c.alu.Or, "OR") }
func (c *CPU) opOR_Ev_Gv()  { c.execRM(c.fullWidth(), false, true, c.alu.Or, "OR") }
func (c *CPU) opOR_Gb_Eb()  { c.execRM(c.byteWidth(), true, true, c.alu.Or, "OR") }
func (c *CPU) opOR_Gv_Ev()  { c.execRM(c.fullWidth(), true, true, c.alu.Or, "OR") }
func (c *CPU) opOR_AL_Ib()  { c.execAcc(c.byteWidth(), true, c.alu.Or, "OR") }
func (c *CPU) opOR_eAX_Iz() { c.execAcc(c.fullWidth(), true, c.alu.Or, "OR") }

// ADC: 0x10-0x15 (carry folded in via a closure over the ALU's Add)
func (c *CPU) withCarry(op aluBinOp) aluBinOp {
	return func(w Width, a, b uint64) uint64 {
		cf := uint64(0)
		if c.Flags.Get(FlagCF) {
			cf = 1
		}
		return op(w, a, (b+cf)&widthMask(w))
	}
}

func (c *CPU) opADC_Eb_Gb()  { c.execRM(c.byteWidth(), false, true, c.withCarry(c.alu.Add), "ADC") }
func (c *CPU) opADC_Ev_Gv()  { c.execRM(c.fullWidth(), false, true, c.withCarry(c.alu.Add), "ADC") }
func (c *CPU) opADC_Gb_Eb()  { c.execRM(c.byteWidth(), true, true, c.withCarry(c.alu.Add), "ADC") }
func (c *CPU) opADC_Gv_Ev()  { c.execRM(c.fullWidth(), true, true, c.withCarry(c.alu.Add), "ADC") }
func (c *CPU) opADC_AL_Ib()  { c.execAcc(c.byteWidth(), true, c.withCarry(c.alu.Add), "ADC") }
func (c *CPU) opADC_eAX_Iz() { c.execAcc(c.fullWidth(), true, c.withCarry(c.alu.Add), "ADC") }

// SBB: 0x18-0x1D
func (c *CPU) opSBB_Eb_Gb()  { c.execRM(c.byteWidth(), false, true, c.withCarry(c.alu.Sub), "SBB") }
func (c *CPU) opSBB_Ev_Gv()  { c.execRM(c.fullWidth(), false, true, c.withCarry(c.alu.Sub), "SBB") }
func (c *CPU) opSBB_Gb_Eb()  { c.execRM(c.byteWidth(), true, true, c.withCarry(c.alu.Sub), "SBB") }
func (c *CPU) opSBB_Gv_Ev()  { c.execRM(c.fullWidth(), true, true, c.withCarry(c.alu.Sub), "SBB") }
func (c *CPU) opSBB_AL_Ib()  { c.execAcc(c.byteWidth(), true, c.withCarry(c.alu.Sub), "SBB") }
func (c *CPU) opSBB_eAX_Iz() { c.execAcc(c.fullWidth(), true, c.withCarry(c.alu.Sub), "SBB") }

// AND: 0x20-0x25
func (c *CPU) opAND_Eb_Gb()  { c.execRM(c.byteWidth(), false, true, c.alu.And, "AND") }
func (c *CPU) opAND_Ev_Gv()  { c.execRM(c.fullWidth(), false, true, c.alu.And, "AND") }
func (c *CPU) opAND_Gb_Eb()  { c.execRM(c.byteWidth(), true, true, c.alu.And, "AND") }
func (c *CPU) opAND_Gv_Ev()  { c.execRM(c.fullWidth(), true, true, c.alu.And, "AND") }
func (c *CPU) opAND_AL_Ib()  { c.execAcc(c.byteWidth(), true, c.alu.And, "AND") }
func (c *CPU) opAND_eAX_Iz() { c.execAcc(c.fullWidth(), true, c.alu.And, "AND") }

// SUB: 0x28-0x2D. 0x29 (SUB Ev,Gv) is real-mode-only, matching the
// reference implementation this was distilled from: it never grew a
// protected-mode arm, so that encoding reports unimplemented outside real
// mode rather than guessing at one.
func (c *CPU) opSUB_Eb_Gb() { c.execRM(c.byteWidth(), false, true, c.alu.Sub, "SUB") }
func (c *CPU) opSUB_Ev_Gv() {
	if c.Ctrl.CR0&CR0PE != 0 {
		c.opUnimplemented()
		return
	}
	c.execRM(c.fullWidth(), false, true, c.alu.Sub, "SUB")
}
func (c *CPU) opSUB_Gb_Eb()  { c.execRM(c.byteWidth(), true, true, c.alu.Sub, "SUB") }
func (c *CPU) opSUB_Gv_Ev()  { c.execRM(c.fullWidth(), true, true, c.alu.Sub, "SUB") }
func (c *CPU) opSUB_AL_Ib()  { c.execAcc(c.byteWidth(), true, c.alu.Sub, "SUB") }
func (c *CPU) opSUB_eAX_Iz() { c.execAcc(c.fullWidth(), true, c.alu.Sub, "SUB") }

// XOR: 0x30-0x35. 0x31 (XOR Ev,Gv) is real-mode-only for the same reason as
// 0x29 above.
func (c *CPU) opXOR_Eb_Gb() { c.execRM(c.byteWidth(), false, true, c.alu.Xor, "XOR") }
func (c *CPU) opXOR_Ev_Gv() {
	if c.Ctrl.CR0&CR0PE != 0 {
		c.opUnimplemented()
		return
	}
	c.execRM(c.fullWidth(), false, true, c.alu.Xor, "XOR")
}
func (c *CPU) opXOR_Gb_Eb()  { c.execRM(c.byteWidth(), true, true, c.alu.Xor, "XOR") }
func (c *CPU) opXOR_Gv_Ev()  { c.execRM(c.fullWidth(), true, true, c.alu.Xor, "XOR") }
func (c *CPU) opXOR_AL_Ib()  { c.execAcc(c.byteWidth(), true, c.alu.Xor, "XOR") }
func (c *CPU) opXOR_eAX_Iz() { c.execAcc(c.fullWidth(), true, c.alu.Xor, "XOR") }

// CMP: 0x38-0x3D, same as SUB but the result is never stored.
func (c *CPU) opCMP_Eb_Gb()  { c.execRM(c.byteWidth(), false, false, c.alu.Sub, "CMP") }
func (c *CPU) opCMP_Ev_Gv()  { c.execRM(c.fullWidth(), false, false, c.alu.Sub, "CMP") }
func (c *CPU) opCMP_Gb_Eb()  { c.execRM(c.byteWidth(), true, false, c.alu.Sub, "CMP") }
func (c *CPU) opCMP_Gv_Ev()  { c.execRM(c.fullWidth(), true, false, c.alu.Sub, "CMP") }
func (c *CPU) opCMP_AL_Ib()  { c.execAcc(c.byteWidth(), false, c.alu.Sub, "CMP") }
func (c *CPU) opCMP_eAX_Iz() { c.execAcc(c.fullWidth(), false, c.alu.Sub, "CMP") }

// TEST: 0x84/0x85 (register form) and 0xA8/0xA9 (accumulator-immediate form).
func (c *CPU) opTEST_Eb_Gb()  { c.execRM(c.byteWidth(), false, false, c.alu.And, "TEST") }
func (c *CPU) opTEST_Ev_Gv()  { c.execRM(c.fullWidth(), false, false, c.alu.And, "TEST") }
func (c *CPU) opTEST_AL_Ib()  { c.execAcc(c.byteWidth(), false, c.alu.And, "TEST") }
func (c *CPU) opTEST_eAX_Iz() { c.execAcc(c.fullWidth(), false, c.alu.And, "TEST") }

// grp1Names names the eight Group 1 arithmetic ops in ModR/M reg-field
// order, shared between grp1's handler dispatch and its mnemonic line.
var grp1Names = [8]string{"ADD", "OR", "ADC", "SBB", "AND", "SUB", "XOR", "CMP"}

// Group 1: 0x80 Eb,Ib / 0x81 Ev,Iz / 0x83 Ev,Ib(sign-extended). The ModR/M
// reg field selects which of the eight arithmetic ops to apply.
func (c *CPU) initGrp1() {
	c.grp1Ops = [8]aluBinOp{c.alu.Add, c.alu.Or, c.withCarry(c.alu.Add), c.withCarry(c.alu.Sub), c.alu.And, c.alu.Sub, c.alu.Xor, c.alu.Sub}
}

func (c *CPU) grp1(m ModRM, w Width, imm uint64) {
	idx := m.RegField & 7
	op := c.grp1Ops[idx]
	store := idx != 7 // 7 == CMP, compare-only
	res := op(w, c.ReadOperand(m.RM), imm)
	if store {
		c.WriteOperand(m.RM, res)
	}
	c.curMnemonic = fmt.Sprintf("%s %s, 0x%X", grp1Names[idx], c.operandSyntax(m.RM), imm)
}

func (c *CPU) opGrp1_Eb_Ib() {
	w := c.byteWidth()
	m := c.decodeModRM(w)
	imm := c.fetchImm(W8)
	c.grp1(m, w, imm)
}

func (c *CPU) opGrp1_Ev_Iz() {
	w := c.fullWidth()
	m := c.decodeModRM(w)
	imm := c.fetchImmZ(w)
	c.grp1(m, w, imm)
}

func (c *CPU) opGrp1_Ev_Ib() {
	w := c.fullWidth()
	m := c.decodeModRM(w)
	imm := signExtendTo64(uint64(c.fetch8()), W8)
	c.grp1(m, w, imm)
}
