package payroll

// ComputePayroll folds a base salary and component lines into gross,
// deductions and net. Components of unknown kinds are ignored.
func ComputePayroll(baseSalary float64, components []Component) (gross, deductions, net float64) {
	gross = baseSalary
	for _, c := range components {
		switch c.Kind {
		case ComponentEarning:
			gross += c.Amount
		case ComponentDeduction:
			deductions += c.Amount
		}
	}
	net = gross - deductions
	return gross, deductions, net
}

// UnpaidLeaveDeduction prorates the base salary over the month's working
// days for each unpaid absence day.
func UnpaidLeaveDeduction(baseSalary float64, workingDays int, unpaidDays float64) float64 {
	if workingDays <= 0 || unpaidDays <= 0 {
		return 0
	}
	return baseSalary / float64(workingDays) * unpaidDays
}
