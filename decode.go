// decode.go - Instruction Decoding (ModR/M, SIB, operand/address resolution)
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

// OperandKind distinguishes a register-direct operand reference from a
// memory operand reference. Using a small tagged struct here, instead of
// the reference implementation's raw void* into register/memory storage,
// keeps every operand reference self-describing and type-safe.
type OperandKind int

const (
	OperandReg OperandKind = iota
	OperandMem
)

// OperandRef names where a decoded operand lives and at what width it
// should be read or written. It never embeds a pointer into CPU state;
// ReadOperand/WriteOperand resolve it against the CPU each time.
type OperandRef struct {
	Kind   OperandKind
	Reg    byte
	Addr   uint64
	Width  Width
	RexPresent bool
}

func (c *CPU) ReadOperand(ref OperandRef) uint64 {
	if ref.Kind == OperandReg {
		return c.Regs.GetWidth(ref.Reg, ref.Width, ref.RexPresent)
	}
	return c.readMem(ref.Addr, ref.Width)
}

func (c *CPU) WriteOperand(ref OperandRef, v uint64) {
	if ref.Kind == OperandReg {
		c.Regs.SetWidth(ref.Reg, ref.Width, ref.RexPresent, v)
		return
	}
	c.writeMem(ref.Addr, ref.Width, v)
}

func (c *CPU) readMem(addr uint64, w Width) uint64 {
	n := int(w) / 8
	buf := c.Mem.Read(addr, n)
	var v uint64
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint64(buf[i])
	}
	return v
}

// writeMem classifies the access before committing it: a hit from the
// classifier raises the fault and the write never reaches memory, per the
// "classify before write, no commit on a hit" contract every memory-modifying
// handler is bound to.
func (c *CPU) writeMem(addr uint64, w Width, v uint64) bool {
	if ev := c.classify(c.checkPaging, c.checkAlignment(addr, w)); ev.Kind != FaultNone {
		c.raiseFault(ev)
		return false
	}
	n := int(w) / 8
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		buf[i] = byte(v >> (8 * uint(i)))
	}
	c.Mem.Write(addr, buf)
	return true
}

// ModRM is the decoded form of a ModR/M byte (and its trailing SIB byte and
// displacement, when present).
type ModRM struct {
	Mod      byte
	RegField byte // register/opcode-extension field, REX.R-extended
	RM       OperandRef
}

// operandWidth resolves the nominal/rex.W/op-prefix/mode priority chain. A
// byte-kind operand is always 8 bits regardless of mode or prefixes.
func (c *CPU) operandWidth(byteKind bool) Width {
	if byteKind {
		return W8
	}
	if c.Ctrl.CR0&CR0PE == 0 {
		if c.prefix.opSize {
			return W32
		}
		return W16
	}
	if c.prefix.rexW {
		return W64
	}
	if c.prefix.opSize {
		return W16
	}
	return W32
}

// addrWidth resolves the address-size chain: mode default, toggled by the
// 0x67 prefix to the other width.
func (c *CPU) addrWidth() Width {
	if c.Ctrl.CR0&CR0PE == 0 {
		if c.prefix.addrSize {
			return W32
		}
		return W16
	}
	if c.prefix.addrSize {
		return W32
	}
	return W64
}

// codeAddr returns the current linear fetch address: CS.Base + IP.
func (c *CPU) codeAddr() uint64 {
	return uint64(c.Segs[SegCS].Base) + c.Regs.IP()
}

func (c *CPU) fetch8() byte {
	v := c.Mem.ReadByte(c.codeAddr())
	c.Regs.SetIP(c.Regs.IP() + 1)
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := uint16(c.fetch8())
	hi := uint16(c.fetch8())
	return lo | hi<<8
}

func (c *CPU) fetch32() uint32 {
	lo := uint32(c.fetch16())
	hi := uint32(c.fetch16())
	return lo | hi<<16
}

func (c *CPU) fetchImm(w Width) uint64 {
	switch w {
	case W8:
		return uint64(c.fetch8())
	case W16:
		return uint64(c.fetch16())
	case W32:
		return uint64(c.fetch32())
	default:
		lo := uint64(c.fetch32())
		hi := uint64(c.fetch32())
		return lo | hi<<32
	}
}

// fetchImmZ reads an Iz-encoded immediate: word-sized for a 16-bit operand,
// dword-sized otherwise. REX.W widens the destination to 64 bits but never
// widens an Iz immediate itself, so the W64 case still reads only 32 bits
// and sign-extends them, rather than falling through to fetchImm's 8-byte
// W64 read (which is correct only for the true Iv immediate forms).
func (c *CPU) fetchImmZ(w Width) uint64 {
	if w == W64 {
		return signExtendTo64(uint64(c.fetch32()), W32)
	}
	return c.fetchImm(w)
}

func signExtendTo64(v uint64, w Width) uint64 {
	return uint64(signExtend(v, w))
}

// decodeModRM reads a ModR/M byte (and SIB/displacement as needed) and
// produces the RM operand reference at width w. A register-direct RM
// operand records whether a REX prefix was present, which decides between
// AH/CH/DH/BH and SPL/BPL/SIL/DIL for byte-kind instructions.
func (c *CPU) decodeModRM(w Width) ModRM {
	b := c.fetch8()
	mod := b >> 6
	regField := (b >> 3) & 7
	rm := b & 7
	if c.prefix.rexR {
		regField |= 8
	}

	if mod == 3 {
		idx := rm
		if c.prefix.rexB {
			idx |= 8
		}
		return ModRM{
			Mod:      mod,
			RegField: regField,
			RM:       OperandRef{Kind: OperandReg, Reg: idx, Width: w, RexPresent: c.prefix.rexPresent},
		}
	}

	addr := c.decodeMemOperand(mod, rm)
	return ModRM{
		Mod:      mod,
		RegField: regField,
		RM:       OperandRef{Kind: OperandMem, Addr: addr, Width: w},
	}
}

func (c *CPU) decodeMemOperand(mod, rm byte) uint64 {
	if c.addrWidth() == W16 {
		return c.decodeMemOperand16(mod, rm)
	}
	return c.decodeMemOperand32(mod, rm)
}

// decodeMemOperand16 implements the real-mode 16-bit ModR/M addressing
// table: the seven fixed base+index combinations, plus the mod==0,rm==6
// direct-address special case.
func (c *CPU) decodeMemOperand16(mod, rm byte) uint64 {
	var base uint64
	switch rm {
	case 0:
		base = uint64(c.Regs.Get16(RBX)) + uint64(c.Regs.Get16(RSI))
	case 1:
		base = uint64(c.Regs.Get16(RBX)) + uint64(c.Regs.Get16(RDI))
	case 2:
		base = uint64(c.Regs.Get16(RBP)) + uint64(c.Regs.Get16(RSI))
	case 3:
		base = uint64(c.Regs.Get16(RBP)) + uint64(c.Regs.Get16(RDI))
	case 4:
		base = uint64(c.Regs.Get16(RSI))
	case 5:
		base = uint64(c.Regs.Get16(RDI))
	case 6:
		if mod == 0 {
			disp := uint64(c.fetch16())
			return c.applySegDefault(disp, SegDS) // direct address: DS default, not the rm==6 SS rule
		}
		base = uint64(c.Regs.Get16(RBP))
	case 7:
		base = uint64(c.Regs.Get16(RBX))
	}

	switch mod {
	case 1:
		base += signExtendTo64(uint64(c.fetch8()), W8)
	case 2:
		base += uint64(c.fetch16())
	}
	return c.applySeg(base&0xFFFF, rm)
}

// decodeMemOperand32 implements the 32/64-bit ModR/M+SIB addressing forms:
// SIB byte when rm==4, RIP-relative disp32 when rm==5 and mod==0, and plain
// base+disp otherwise.
func (c *CPU) decodeMemOperand32(mod, rm byte) uint64 {
	if rm == 4 {
		return c.applySeg(c.decodeSIB(mod), rm)
	}
	if rm == 5 && mod == 0 {
		disp := signExtendTo64(uint64(c.fetch32()), W32)
		return c.Regs.IP() + disp
	}

	idx := rm
	if c.prefix.rexB {
		idx |= 8
	}
	base := c.Regs.GetWidth(idx, c.addrWidth(), c.prefix.rexPresent)

	switch mod {
	case 1:
		base += signExtendTo64(uint64(c.fetch8()), W8)
	case 2:
		base += signExtendTo64(uint64(c.fetch32()), W32)
	}
	return c.applySeg(base, rm)
}

// decodeSIB reads a SIB byte and resolves it to a linear address contribution
// of base + index*scale. An index field of 4 means "no index" only when
// REX.X is also clear; a base field of 5 with mod==0 means "no base, disp32
// follows" regardless of REX.B.
func (c *CPU) decodeSIB(mod byte) uint64 {
	sib := c.fetch8()
	ss := sib >> 6
	idxField := (sib >> 3) & 7
	baseField := sib & 7

	scale := uint64(1) << ss

	var addr uint64
	idxIdx := idxField
	if c.prefix.rexX {
		idxIdx |= 8
	}
	if !(idxField == 4 && !c.prefix.rexX) {
		addr += c.Regs.GetWidth(idxIdx, c.addrWidth(), c.prefix.rexPresent) * scale
	}

	if baseField == 5 && mod == 0 {
		addr += signExtendTo64(uint64(c.fetch32()), W32)
	} else {
		baseIdx := baseField
		if c.prefix.rexB {
			baseIdx |= 8
		}
		addr += c.Regs.GetWidth(baseIdx, c.addrWidth(), c.prefix.rexPresent)
		switch mod {
		case 1:
			addr += signExtendTo64(uint64(c.fetch8()), W8)
		case 2:
			addr += signExtendTo64(uint64(c.fetch32()), W32)
		}
	}
	return addr
}

// applySeg adds the effective segment base. An explicit segment-override
// prefix wins; otherwise, in 16-bit addressing, rm==2,3,6(mod!=0) default to
// SS like the reference architecture's stack-relative encodings, everything
// else to DS.
func (c *CPU) applySeg(addr uint64, rm byte) uint64 {
	seg := SegDS
	if c.addrWidth() == W16 && (rm == 2 || rm == 3 || rm == 6) {
		seg = SegSS
	}
	return c.applySegDefault(addr, seg)
}

// applySegDefault adds the effective segment base for a caller that has
// already resolved its own default segment, honoring an explicit
// segment-override prefix the same way applySeg does.
func (c *CPU) applySegDefault(addr uint64, seg int) uint64 {
	if c.prefix.hasSeg {
		seg = c.prefix.seg
	}
	return (addr + uint64(c.Segs[seg].Base)) & 0xFFFFFFFF
}
