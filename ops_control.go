// ops_control.go - Control-Flow Opcode Handlers (Jcc/JMP/CALL/RET/LOOP/flags)
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import "fmt"

// condTrue evaluates one of the sixteen architectural condition codes
// against the current flags.
func (c *CPU) condTrue(cc byte) bool {
	switch cc & 0xF {
	case 0x0:
		return c.Flags.Get(FlagOF)
	case 0x1:
		return !c.Flags.Get(FlagOF)
	case 0x2:
		return c.Flags.Get(FlagCF)
	case 0x3:
		return !c.Flags.Get(FlagCF)
	case 0x4:
		return c.Flags.Get(FlagZF)
	case 0x5:
		return !c.Flags.Get(FlagZF)
	case 0x6:
		return c.Flags.Get(FlagCF) || c.Flags.Get(FlagZF)
	case 0x7:
		return !c.Flags.Get(FlagCF) && !c.Flags.Get(FlagZF)
	case 0x8:
		return c.Flags.Get(FlagSF)
	case 0x9:
		return !c.Flags.Get(FlagSF)
	case 0xA:
		return c.Flags.Get(FlagPF)
	case 0xB:
		return !c.Flags.Get(FlagPF)
	case 0xC:
		return c.Flags.Get(FlagSF) != c.Flags.Get(FlagOF)
	case 0xD:
		return c.Flags.Get(FlagSF) == c.Flags.Get(FlagOF)
	case 0xE:
		return c.Flags.Get(FlagZF) || (c.Flags.Get(FlagSF) != c.Flags.Get(FlagOF))
	default: // 0xF
		return !c.Flags.Get(FlagZF) && (c.Flags.Get(FlagSF) == c.Flags.Get(FlagOF))
	}
}

// ccNames gives each of the sixteen condition codes its Jcc mnemonic
// suffix, in the same cc order condTrue switches on.
var ccNames = [16]string{"JO", "JNO", "JB", "JAE", "JE", "JNE", "JBE", "JA", "JS", "JNS", "JP", "JNP", "JL", "JGE", "JLE", "JG"}

// jccShort builds the 0x70-0x7F short-conditional-jump handler for one
// condition code.
func jccShort(cc byte) func(*CPU) {
	return func(c *CPU) {
		rel := int8(c.fetch8())
		taken := c.condTrue(cc)
		if taken {
			c.Regs.SetIP(c.Regs.IP() + uint64(int64(rel)))
		}
		c.curMnemonic = fmt.Sprintf("%s 0x%X", ccNames[cc&0xF], c.Regs.IP())
	}
}

// jccNear builds the 0x0F 0x80-0x8F near-conditional-jump handler.
func jccNear(cc byte) func(*CPU) {
	return func(c *CPU) {
		rel := int32(c.fetch32())
		if c.condTrue(cc) {
			c.Regs.SetIP(c.Regs.IP() + uint64(int64(rel)))
		}
		c.curMnemonic = fmt.Sprintf("%s 0x%X", ccNames[cc&0xF], c.Regs.IP())
	}
}

// JMP: 0xE9 (rel16/rel32, selected by the operand-size prefix the same way
// it selects any other operand width) and 0xEB (rel8, enrichment).
func (c *CPU) opJMP_rel32() {
	w := c.operandWidth(false)
	var rel int64
	if w == W16 {
		rel = int64(int16(c.fetch16()))
	} else {
		rel = int64(int32(c.fetch32()))
	}
	c.Regs.SetIP(c.Regs.IP() + uint64(rel))
	c.curMnemonic = fmt.Sprintf("JMP 0x%X", c.Regs.IP())
}

func (c *CPU) opJMP_rel8() {
	rel := int8(c.fetch8())
	c.Regs.SetIP(c.Regs.IP() + uint64(int64(rel)))
	c.curMnemonic = fmt.Sprintf("JMP 0x%X", c.Regs.IP())
}

// CALL/RET (near form only; far pointer forms are not implemented, matching
// the reference material's own stubs for those encodings).
func (c *CPU) opCALL_rel32() {
	rel := int32(c.fetch32())
	c.push(c.addrWidth(), c.Regs.IP())
	c.Regs.SetIP(c.Regs.IP() + uint64(int64(rel)))
	c.curMnemonic = fmt.Sprintf("CALL 0x%X", c.Regs.IP())
}

func (c *CPU) opRET() {
	addr := c.pop(c.addrWidth())
	c.Regs.SetIP(addr)
	c.curMnemonic = "RET"
}

// LOOP: 0xE2, decrement the address-size counter register and take the
// short branch while it remains nonzero.
func (c *CPU) opLOOP() {
	rel := int8(c.fetch8())
	w := c.addrWidth()
	count := c.Regs.GetWidth(RCX, w, c.prefix.rexPresent) - 1
	c.Regs.SetWidth(RCX, w, c.prefix.rexPresent, count)
	if count != 0 {
		c.Regs.SetIP(c.Regs.IP() + uint64(int64(rel)))
	}
	c.curMnemonic = fmt.Sprintf("LOOP 0x%X", c.Regs.IP())
}

func (c *CPU) opHLT() {
	c.Halted = true
	c.curMnemonic = "HLT"
}

func (c *CPU) opNOP() { c.curMnemonic = "NOP" }

func (c *CPU) opCLC() { c.Flags.Set(FlagCF, false); c.curMnemonic = "CLC" }
func (c *CPU) opSTC() { c.Flags.Set(FlagCF, true); c.curMnemonic = "STC" }
func (c *CPU) opCMC() { c.Flags.Set(FlagCF, !c.Flags.Get(FlagCF)); c.curMnemonic = "CMC" }
func (c *CPU) opCLD() { c.Flags.Set(FlagDF, false); c.curMnemonic = "CLD" }
func (c *CPU) opSTD() { c.Flags.Set(FlagDF, true); c.curMnemonic = "STD" }

// CLI: 0xFA (pinned). Real mode clears IF unconditionally. In protected
// mode, IF clears outright when CPL is privileged enough (CPL<=IOPL);
// otherwise, if virtual-interrupt delegation is armed (CR4.VME or CR4.PVI),
// VIF clears instead; otherwise the instruction is not permitted and
// raises GP(0).
func (c *CPU) opCLI() {
	c.curMnemonic = "CLI"
	if c.Ctrl.CR0&CR0PE == 0 {
		c.Flags.Set(FlagIF, false)
		return
	}
	cpl := uint8(c.Segs[SegCS].Selector & 3)
	if cpl <= c.Flags.IOPL() {
		c.Flags.Set(FlagIF, false)
		return
	}
	if c.Ctrl.CR4&(CR4VME|CR4PVI) != 0 {
		c.Flags.Set(FlagVIF, false)
		return
	}
	if ev := c.classify(c.checkPrivilege); ev.Kind != FaultNone {
		c.raiseFault(ev)
	}
}

// STI mirrors CLI's policy for setting IF/VIF.
func (c *CPU) opSTI() {
	c.curMnemonic = "STI"
	if c.Ctrl.CR0&CR0PE == 0 {
		c.Flags.Set(FlagIF, true)
		return
	}
	cpl := uint8(c.Segs[SegCS].Selector & 3)
	if cpl <= c.Flags.IOPL() {
		c.Flags.Set(FlagIF, true)
		return
	}
	if c.Ctrl.CR4&(CR4VME|CR4PVI) != 0 {
		c.Flags.Set(FlagVIF, true)
		return
	}
	if ev := c.classify(c.checkPrivilege); ev.Kind != FaultNone {
		c.raiseFault(ev)
	}
}

// PUSHF/POPF: 0x9C/0x9D.
func (c *CPU) opPUSHF() {
	c.push(c.fullWidth(), c.Flags.Raw())
	c.curMnemonic = "PUSHF"
}

func (c *CPU) opPOPF() {
	c.Flags.SetRaw(c.pop(c.fullWidth()))
	c.curMnemonic = "POPF"
}
