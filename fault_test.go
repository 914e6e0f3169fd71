// fault_test.go - Fault Classification Unit Tests
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import "testing"

func TestClassifyReturnsFirstHit(t *testing.T) {
	c := newTestCPU()
	never := func() (FaultKind, uint32, bool) { return FaultNone, 0, false }
	always := func() (FaultKind, uint32, bool) { return FaultGP, 7, true }
	unreached := func() (FaultKind, uint32, bool) { return FaultSS, 0, true }

	ev := c.classify(never, always, unreached)
	if ev.Kind != FaultGP || ev.ErrorCode != 7 {
		t.Fatalf("classify = %+v, want {GP 7}", ev)
	}
}

func TestClassifyReturnsNoneWhenNothingHits(t *testing.T) {
	c := newTestCPU()
	never := func() (FaultKind, uint32, bool) { return FaultNone, 0, false }
	ev := c.classify(never, never)
	if ev.Kind != FaultNone {
		t.Fatalf("classify = %+v, want FaultNone", ev)
	}
}

func TestCheckPagingFaultsWhenPGSet(t *testing.T) {
	c := newTestCPU()
	c.Ctrl.CR0 |= CR0PG
	kind, _, hit := c.checkPaging()
	if !hit || kind != FaultPF {
		t.Fatalf("checkPaging = (%v,_,%v), want (PF,_,true)", kind, hit)
	}
}

func TestCheckPagingClearWithoutPG(t *testing.T) {
	c := newTestCPU()
	_, _, hit := c.checkPaging()
	if hit {
		t.Fatal("checkPaging should not fire without CR0.PG")
	}
}

func TestCheckPrivilegeFaultsAboveIOPL(t *testing.T) {
	c := newTestCPU()
	c.Segs[SegCS].Selector = 3 // CPL 3
	// IOPL defaults to 0, CR4.VME/PVI clear.
	kind, _, hit := c.checkPrivilege()
	if !hit || kind != FaultGP {
		t.Fatalf("checkPrivilege = (%v,_,%v), want (GP,_,true)", kind, hit)
	}
}

func TestCheckPrivilegeAllowedAtOrBelowIOPL(t *testing.T) {
	c := newTestCPU()
	c.Segs[SegCS].Selector = 0 // CPL 0
	_, _, hit := c.checkPrivilege()
	if hit {
		t.Fatal("checkPrivilege should not fire at CPL <= IOPL")
	}
}

func TestCheckPrivilegeAllowedWithVirtualModeDelegation(t *testing.T) {
	c := newTestCPU()
	c.Segs[SegCS].Selector = 3
	c.Ctrl.CR4 |= CR4VME
	_, _, hit := c.checkPrivilege()
	if hit {
		t.Fatal("checkPrivilege should not fire when CR4.VME delegates to VIF")
	}
}

func TestCheckDeviceAvailableFaultsOnTSOrEM(t *testing.T) {
	c := newTestCPU()
	c.Ctrl.CR0 |= CR0TS
	kind, _, hit := c.checkDeviceAvailable()
	if !hit || kind != FaultNM {
		t.Fatalf("checkDeviceAvailable = (%v,_,%v), want (NM,_,true)", kind, hit)
	}
}
