package payroll

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"opshub/internal/domain/auth"
	"opshub/internal/domain/metrics"
	cryptoutil "opshub/internal/platform/crypto"
)

type StoreAPI interface {
	Upsert(ctx context.Context, p Payslip) (string, error)
	Get(ctx context.Context, payslipID string) (Payslip, error)
	List(ctx context.Context, scope auth.Scope, month, year, limit, offset int) ([]Payslip, error)
	Publish(ctx context.Context, payslipID, filePath string) error
	ActiveSalaries(ctx context.Context, department string) ([]SalaryRecord, error)
	UnpaidAbsenceDays(ctx context.Context, userID string, from, to time.Time) (float64, error)
}

type Service struct {
	store      StoreAPI
	keeper     *cryptoutil.Keeper
	payslipDir string
}

func NewService(store StoreAPI, keeper *cryptoutil.Keeper) *Service {
	return &Service{store: store, keeper: keeper, payslipDir: "storage/payslips"}
}

func (s *Service) Get(ctx context.Context, payslipID string) (Payslip, error) {
	return s.store.Get(ctx, payslipID)
}

func (s *Service) List(ctx context.Context, scope auth.Scope, month, year, limit, offset int) ([]Payslip, error) {
	return s.store.List(ctx, scope, month, year, limit, offset)
}

// RunMonth computes draft payslips for every active salaried user, prorating
// unpaid absences against the month's working days. Re-running a month
// overwrites existing drafts.
func (s *Service) RunMonth(ctx context.Context, department string, month, year int) ([]Payslip, error) {
	if month < 1 || month > 12 || year < 2000 || year > 2200 {
		return nil, ErrInvalidMonth
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	workingDays := metrics.WorkingDays(first, last)

	salaries, err := s.store.ActiveSalaries(ctx, department)
	if err != nil {
		return nil, err
	}

	var payslips []Payslip
	for _, rec := range salaries {
		unpaid, err := s.store.UnpaidAbsenceDays(ctx, rec.UserID, first, last)
		if err != nil {
			return nil, err
		}

		var components []Component
		if deduction := UnpaidLeaveDeduction(rec.BaseSalary, workingDays, unpaid); deduction > 0 {
			components = append(components, Component{
				Name:   "unpaid absence",
				Kind:   ComponentDeduction,
				Amount: deduction,
			})
		}
		gross, deductions, net := ComputePayroll(rec.BaseSalary, components)

		p := Payslip{
			UserID:     rec.UserID,
			UserName:   rec.Name,
			Month:      month,
			Year:       year,
			BaseSalary: rec.BaseSalary,
			Gross:      gross,
			Deductions: deductions,
			Net:        net,
			Currency:   rec.Currency,
			Components: components,
			Status:     StatusDraft,
		}
		id, err := s.store.Upsert(ctx, p)
		if err != nil {
			return nil, err
		}
		p.ID = id
		payslips = append(payslips, p)
	}
	return payslips, nil
}

// Publish renders the payslip PDF, encrypts it when a data key is configured,
// and flips the payslip to published.
func (s *Service) Publish(ctx context.Context, payslipID string) (Payslip, error) {
	p, err := s.store.Get(ctx, payslipID)
	if err != nil {
		return Payslip{}, err
	}
	if p.Status != StatusDraft {
		return Payslip{}, ErrAlreadyPublished
	}

	filePath, err := s.renderPDF(p)
	if err != nil {
		return Payslip{}, err
	}
	if err := s.store.Publish(ctx, payslipID, filePath); err != nil {
		return Payslip{}, err
	}
	p.Status = StatusPublished
	p.FilePath = filePath
	return p, nil
}

func (s *Service) renderPDF(p Payslip) (string, error) {
	if err := os.MkdirAll(s.payslipDir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(s.payslipDir, p.ID+".pdf")

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", p.UserName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %04d-%02d", p.Year, p.Month))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Base salary: %.2f %s", p.BaseSalary, p.Currency))
	pdf.Ln(7)
	for _, c := range p.Components {
		pdf.Cell(0, 8, fmt.Sprintf("%s (%s): %.2f %s", c.Name, c.Kind, c.Amount, p.Currency))
		pdf.Ln(7)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Gross: %.2f %s", p.Gross, p.Currency))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Deductions: %.2f %s", p.Deductions, p.Currency))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Net: %.2f %s", p.Net, p.Currency))

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}

	if s.keeper != nil && s.keeper.Configured() {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", err
		}
		sealed, err := s.keeper.Seal(data)
		if err != nil {
			return "", err
		}
		sealedPath := filePath + ".enc"
		if err := os.WriteFile(sealedPath, sealed, 0o600); err != nil {
			return "", err
		}
		if err := os.Remove(filePath); err != nil {
			return "", err
		}
		return sealedPath, nil
	}
	return filePath, nil
}

// PayslipBytes loads a published payslip file, decrypting when needed.
func (s *Service) PayslipBytes(ctx context.Context, payslipID string) ([]byte, error) {
	p, err := s.store.Get(ctx, payslipID)
	if err != nil {
		return nil, err
	}
	if p.FilePath == "" {
		return nil, ErrPayslipNotFound
	}
	data, err := os.ReadFile(p.FilePath)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(p.FilePath) == ".enc" && s.keeper != nil && s.keeper.Configured() {
		return s.keeper.Open(data)
	}
	return data, nil
}
