// dispatch.go - Opcode Dispatch Tables (primary and 0x0F-extended)
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

// OpcodeFunc is the shape of every dispatch table entry, the same
// method-expression pattern the reference core uses for its own 256-entry
// table: a plain function over *CPU rather than a bound closure, so the
// table can be built once from method/function values and shared.
type OpcodeFunc func(*CPU)

// initDispatch builds the primary (one-byte) and extended (0x0F-prefixed)
// opcode tables. Every unassigned slot defaults to the unimplemented-opcode
// diagnostic.
func (c *CPU) initDispatch() {
	for i := range c.primary {
		c.primary[i] = OpcodeFunc((*CPU).opUnimplemented)
	}
	for i := range c.extended {
		c.extended[i] = OpcodeFunc((*CPU).opUnimplemented)
	}

	p := c.primary

	// ADD / OR / ADC / SBB / AND / SUB / XOR / CMP, each as the canonical
	// six-encoding family (Eb,Gb / Ev,Gv / Gb,Eb / Gv,Ev / AL,Ib / eAX,Iz).
	type famFns struct {
		ebgb, evgv, gbeb, gvev, alib, eaxiz OpcodeFunc
	}
	families := []famFns{
		{(*CPU).opADD_Eb_Gb, (*CPU).opADD_Ev_Gv, (*CPU).opADD_Gb_Eb, (*CPU).opADD_Gv_Ev, (*CPU).opADD_AL_Ib, (*CPU).opADD_eAX_Iz},
		{(*CPU).opOR_Eb_Gb, (*CPU).opOR_Ev_Gv, (*CPU).opOR_Gb_Eb, (*CPU).opOR_Gv_Ev, (*CPU).opOR_AL_Ib, (*CPU).opOR_eAX_Iz},
		{(*CPU).opADC_Eb_Gb, (*CPU).opADC_Ev_Gv, (*CPU).opADC_Gb_Eb, (*CPU).opADC_Gv_Ev, (*CPU).opADC_AL_Ib, (*CPU).opADC_eAX_Iz},
		{(*CPU).opSBB_Eb_Gb, (*CPU).opSBB_Ev_Gv, (*CPU).opSBB_Gb_Eb, (*CPU).opSBB_Gv_Ev, (*CPU).opSBB_AL_Ib, (*CPU).opSBB_eAX_Iz},
		{(*CPU).opAND_Eb_Gb, (*CPU).opAND_Ev_Gv, (*CPU).opAND_Gb_Eb, (*CPU).opAND_Gv_Ev, (*CPU).opAND_AL_Ib, (*CPU).opAND_eAX_Iz},
		{(*CPU).opSUB_Eb_Gb, (*CPU).opSUB_Ev_Gv, (*CPU).opSUB_Gb_Eb, (*CPU).opSUB_Gv_Ev, (*CPU).opSUB_AL_Ib, (*CPU).opSUB_eAX_Iz},
		{(*CPU).opXOR_Eb_Gb, (*CPU).opXOR_Ev_Gv, (*CPU).opXOR_Gb_Eb, (*CPU).opXOR_Gv_Ev, (*CPU).opXOR_AL_Ib, (*CPU).opXOR_eAX_Iz},
		{(*CPU).opCMP_Eb_Gb, (*CPU).opCMP_Ev_Gv, (*CPU).opCMP_Gb_Eb, (*CPU).opCMP_Gv_Ev, (*CPU).opCMP_AL_Ib, (*CPU).opCMP_eAX_Iz},
	}
	for i, fam := range families {
		base := byte(i * 8)
		p[base+0] = fam.ebgb
		p[base+1] = fam.evgv
		p[base+2] = fam.gbeb
		p[base+3] = fam.gvev
		p[base+4] = fam.alib
		p[base+5] = fam.eaxiz
	}

	// Legacy segment push/pop shorthands, where the encoding still has a
	// one-byte form (0x0E push CS has no matching pop).
	p[0x06] = pushSeg(SegES)
	p[0x07] = popSeg(SegES)
	p[0x0E] = pushSeg(SegCS)
	p[0x16] = pushSeg(SegSS)
	p[0x17] = popSeg(SegSS)
	p[0x1E] = pushSeg(SegDS)
	p[0x1F] = popSeg(SegDS)

	p[0x0F] = OpcodeFunc((*CPU).opTwoBytePrefix)

	for cc := byte(0); cc < 16; cc++ {
		p[0x70+cc] = jccShort(cc)
	}

	p[0x80] = OpcodeFunc((*CPU).opGrp1_Eb_Ib)
	p[0x81] = OpcodeFunc((*CPU).opGrp1_Ev_Iz)
	p[0x83] = OpcodeFunc((*CPU).opGrp1_Ev_Ib)
	p[0x84] = OpcodeFunc((*CPU).opTEST_Eb_Gb)
	p[0x85] = OpcodeFunc((*CPU).opTEST_Ev_Gv)
	p[0x86] = OpcodeFunc((*CPU).opXCHG_Eb_Gb)
	p[0x87] = OpcodeFunc((*CPU).opXCHG_Ev_Gv)
	p[0x88] = OpcodeFunc((*CPU).opMOV_Eb_Gb)
	p[0x89] = OpcodeFunc((*CPU).opMOV_Ev_Gv)
	p[0x8A] = OpcodeFunc((*CPU).opMOV_Gb_Eb)
	p[0x8B] = OpcodeFunc((*CPU).opMOV_Gv_Ev)
	p[0x8C] = OpcodeFunc((*CPU).opMOV_Ev_Sw)
	p[0x8D] = OpcodeFunc((*CPU).opLEA_Gv_M)
	p[0x8E] = OpcodeFunc((*CPU).opMOV_Sw_Ev)

	for r := byte(0); r < 8; r++ {
		p[0x50+r] = pushReg(0x50 + r)
		p[0x58+r] = popReg(0x58 + r)
		p[0x91+r] = xchgAccShorthand(0x91 + r)
		p[0xB0+r] = movRegImm8(0xB0 + r)
		p[0xB8+r] = movRegImmFull(0xB8 + r)
	}
	p[0x90] = xchgAccShorthand(0x90)

	p[0x98] = OpcodeFunc((*CPU).opCBW)
	p[0x99] = OpcodeFunc((*CPU).opCWD)
	p[0x9C] = OpcodeFunc((*CPU).opPUSHF)
	p[0x9D] = OpcodeFunc((*CPU).opPOPF)

	p[0xA8] = OpcodeFunc((*CPU).opTEST_AL_Ib)
	p[0xA9] = OpcodeFunc((*CPU).opTEST_eAX_Iz)

	p[0xC0] = OpcodeFunc((*CPU).opGrp2_Eb_Ib)
	p[0xC1] = OpcodeFunc((*CPU).opGrp2_Ev_Ib)
	p[0xC2] = OpcodeFunc((*CPU).opRET) // RET Iw, the stack-pop-extra-bytes form collapses to plain RET here
	p[0xC3] = OpcodeFunc((*CPU).opRET)
	p[0xC6] = OpcodeFunc((*CPU).opMOV_Eb_Ib)
	p[0xC7] = OpcodeFunc((*CPU).opMOV_Ev_Iz)

	p[0xD0] = OpcodeFunc((*CPU).opGrp2_Eb_1)
	p[0xD1] = OpcodeFunc((*CPU).opGrp2_Ev_1)
	p[0xD2] = OpcodeFunc((*CPU).opGrp2_Eb_CL)
	p[0xD3] = OpcodeFunc((*CPU).opGrp2_Ev_CL)

	p[0xE2] = OpcodeFunc((*CPU).opLOOP)
	p[0xE8] = OpcodeFunc((*CPU).opCALL_rel32)
	p[0xE9] = OpcodeFunc((*CPU).opJMP_rel32)
	p[0xEB] = OpcodeFunc((*CPU).opJMP_rel8)

	p[0xF4] = OpcodeFunc((*CPU).opHLT)
	p[0xF5] = OpcodeFunc((*CPU).opCMC)
	p[0xF8] = OpcodeFunc((*CPU).opCLC)
	p[0xF9] = OpcodeFunc((*CPU).opSTC)
	p[0xFA] = OpcodeFunc((*CPU).opCLI)
	p[0xFB] = OpcodeFunc((*CPU).opSTI)
	p[0xFC] = OpcodeFunc((*CPU).opCLD)
	p[0xFD] = OpcodeFunc((*CPU).opSTD)
	p[0xFE] = OpcodeFunc((*CPU).opGrp_Eb)
	p[0xFF] = OpcodeFunc((*CPU).opGrp_Ev)

	c.primary = p

	x := c.extended
	for cc := byte(0); cc < 16; cc++ {
		x[0x80+cc] = jccNear(cc)
	}
	x[0xB6] = movExtend(W8, false)
	x[0xB7] = movExtend(W16, false)
	x[0xBE] = movExtend(W8, true)
	x[0xBF] = movExtend(W16, true)
	c.extended = x
}

// opTwoBytePrefix dispatches the 0x0F escape to the extended table.
func (c *CPU) opTwoBytePrefix() {
	opcode := c.fetch8()
	c.curOpcode = opcode
	c.curExtended = true
	c.extended[opcode](c)
}
