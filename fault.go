// fault.go - Fault Classification (SS/GP/PF/AC/NM/NP architectural faults)
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

// FaultKind names an architectural exception the classifier can raise. The
// reference implementation never actually implements classification (its
// checkExceptions stub always returns false), so this policy is built from
// the architecture's own documented rules rather than adapted from a working
// reference.
type FaultKind string

const (
	FaultNone FaultKind = ""
	FaultDB   FaultKind = "DB" // debug (single-step trap)
	FaultNM   FaultKind = "NM" // device not available
	FaultNP   FaultKind = "NP" // segment not present
	FaultSS   FaultKind = "SS" // stack-segment fault
	FaultGP   FaultKind = "GP" // general protection
	FaultPF   FaultKind = "PF" // page fault
	FaultAC   FaultKind = "AC" // alignment check
)

// Unimplemented fault kinds, named so the classifier's exhaustiveness is
// documented rather than silently absent: MC (machine check), VE (virtualization
// exception), SX (security exception), CSO (coprocessor segment overrun, a
// legacy 386 fault no modern handler raises), TS (invalid TSS), MF (x87
// floating point error), XM (SIMD floating point). None of these have a
// source in this core: there is no FPU/SIMD execution unit, no task-state
// segment, and no hypervisor-mode support, so nothing can ever raise them.

type FaultEvent struct {
	Kind      FaultKind
	ErrorCode uint32
}

// classify runs the ordered set of policy checks relevant to one memory or
// privileged-instruction access and returns the first fault that applies, in
// the order the checks are listed; there is no reference ordering to
// follow, so declaration order is the classifier's ordering contract.
func (c *CPU) classify(checks ...func() (FaultKind, uint32, bool)) FaultEvent {
	for _, check := range checks {
		if kind, code, hit := check(); hit {
			return FaultEvent{Kind: kind, ErrorCode: code}
		}
	}
	return FaultEvent{Kind: FaultNone}
}

// checkStackBounds reports SS if a stack-relative access at addr (width w)
// falls outside the current SS segment's limit.
func (c *CPU) checkStackBounds(addr uint64, w Width) func() (FaultKind, uint32, bool) {
	return func() (FaultKind, uint32, bool) {
		if c.Ctrl.CR0&CR0PE == 0 {
			return FaultNone, 0, false
		}
		top := addr + uint64(w)/8 - 1
		limit := uint64(c.Segs[SegSS].Limit)
		if top > limit {
			return FaultSS, 0, true
		}
		return FaultNone, 0, false
	}
}

// checkPaging reports PF whenever paging is enabled: this core has no page
// table walker (paging is an explicit Non-goal), so any attempt to run with
// CR0.PG set cannot be serviced and is reported as a fault rather than
// silently treated as identity-mapped.
func (c *CPU) checkPaging() (FaultKind, uint32, bool) {
	if c.Ctrl.CR0&CR0PG != 0 {
		return FaultPF, 0, true
	}
	return FaultNone, 0, false
}

// checkAlignment reports AC for a misaligned data reference when alignment
// checking is fully armed: CR0.AM set, RFLAGS.AC set, and current privilege
// level 3. CPL is approximated from the CS selector's RPL bits, since this
// core does not model a descriptor-table-backed CPL.
func (c *CPU) checkAlignment(addr uint64, w Width) func() (FaultKind, uint32, bool) {
	return func() (FaultKind, uint32, bool) {
		if c.Ctrl.CR0&CR0AM == 0 || !c.Flags.Get(FlagAC) {
			return FaultNone, 0, false
		}
		if c.Segs[SegCS].Selector&3 != 3 {
			return FaultNone, 0, false
		}
		alignment := uint64(w) / 8
		if alignment > 1 && addr%alignment != 0 {
			return FaultAC, 0, true
		}
		return FaultNone, 0, false
	}
}

// checkPrivilege reports GP for an instruction that requires IOPL-or-better
// privilege (the CLI/STI family) when the current privilege level exceeds
// IOPL and virtual-mode interrupt delegation (CR4.VME/CR4.PVI) is not armed.
func (c *CPU) checkPrivilege() (FaultKind, uint32, bool) {
	if c.Ctrl.CR0&CR0PE == 0 {
		return FaultNone, 0, false
	}
	cpl := uint8(c.Segs[SegCS].Selector & 3)
	if cpl <= c.Flags.IOPL() {
		return FaultNone, 0, false
	}
	if c.Ctrl.CR4&(CR4VME|CR4PVI) != 0 {
		return FaultNone, 0, false
	}
	return FaultGP, 0, true
}

// checkDeviceAvailable reports NM for an x87/MMX/XMM instruction issued
// while CR0.TS or CR0.EM is set. No handler in this core currently reaches
// this check since no floating-point opcodes are implemented, but the
// policy is defined so adding one later has somewhere correct to call.
func (c *CPU) checkDeviceAvailable() (FaultKind, uint32, bool) {
	if c.Ctrl.CR0&(CR0TS|CR0EM) != 0 {
		return FaultNM, 0, true
	}
	return FaultNone, 0, false
}
