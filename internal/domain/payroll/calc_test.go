package payroll

import "testing"

func TestComputePayroll(t *testing.T) {
	components := []Component{
		{Name: "overtime", Kind: ComponentEarning, Amount: 200},
		{Name: "allowance", Kind: ComponentEarning, Amount: 50},
		{Name: "tax", Kind: ComponentDeduction, Amount: 100},
	}

	gross, deductions, net := ComputePayroll(1000, components)
	if gross != 1250 {
		t.Fatalf("expected gross 1250, got %v", gross)
	}
	if deductions != 100 {
		t.Fatalf("expected deductions 100, got %v", deductions)
	}
	if net != 1150 {
		t.Fatalf("expected net 1150, got %v", net)
	}
}

func TestComputePayrollIgnoresUnknownKinds(t *testing.T) {
	components := []Component{
		{Name: "bonus", Kind: "reimbursement", Amount: 100},
		{Name: "tax", Kind: ComponentDeduction, Amount: 25},
	}
	gross, deductions, net := ComputePayroll(500, components)
	if gross != 500 {
		t.Fatalf("expected gross 500, got %v", gross)
	}
	if deductions != 25 {
		t.Fatalf("expected deductions 25, got %v", deductions)
	}
	if net != 475 {
		t.Fatalf("expected net 475, got %v", net)
	}
}

func TestUnpaidLeaveDeduction(t *testing.T) {
	if got := UnpaidLeaveDeduction(2200, 22, 2); got != 200 {
		t.Fatalf("expected 200, got %v", got)
	}
	if got := UnpaidLeaveDeduction(2200, 0, 2); got != 0 {
		t.Fatalf("expected 0 for zero working days, got %v", got)
	}
	if got := UnpaidLeaveDeduction(2200, 22, 0); got != 0 {
		t.Fatalf("expected 0 for zero unpaid days, got %v", got)
	}
}
