// step.go - Instruction Step/Run Loop
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

// Step executes exactly one instruction: accumulate any prefix bytes,
// dispatch the opcode that follows, then report exactly one of a fault, an
// unimplemented-opcode diagnostic, or a normal committed-instruction trace
// line. The prefix accumulator is always reset at the start of a step, so
// prefix state can never survive past the instruction it was read for.
func (c *CPU) Step() {
	if c.Halted {
		return
	}

	c.prefix.reset()
	c.unimplementedHit = false
	c.curMnemonic = ""
	c.LastFault = FaultEvent{Kind: FaultNone}
	startAddr := c.codeAddr()

	var opcode byte
	for {
		opcode = c.fetch8()
		if c.prefix.accumulate(opcode) {
			continue
		}
		break
	}

	c.curOpcode = opcode
	c.curExtended = false
	c.primary[opcode](c)

	switch {
	case c.LastFault.Kind != FaultNone:
		c.reportFault()
	case c.unimplementedHit:
		// opUnimplemented already printed its own diagnostic.
	default:
		c.traceInstruction(startAddr, c.curExtended, c.curOpcode)
	}
}

// Run steps the CPU until it halts, either from HLT, an unimplemented
// opcode, or a raised fault.
func (c *CPU) Run() {
	for !c.Halted {
		c.Step()
	}
}
