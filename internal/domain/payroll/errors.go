package payroll

import "errors"

var (
	ErrPayslipNotFound  = errors.New("payroll: payslip not found")
	ErrAlreadyPublished = errors.New("payroll: payslip already published")
	ErrInvalidMonth     = errors.New("payroll: invalid month or year")
)
