package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"vulcanhr/internal/domain/employee"
	"vulcanhr/internal/domain/evaluation"
)

// EvaluationPDF renders a single monthly evaluation as a printable report.
func EvaluationPDF(w io.Writer, ev evaluation.FullEvaluation, emp employee.Employee) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Evaluacion de Desempeno")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Empleado: %s (%s)", emp.Name, emp.IDNumber))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Departamento: %s", emp.Department))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Periodo: %s %s", ev.Month, ev.Year))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(120, 8, "Criterio")
	pdf.Cell(0, 8, "Puntaje")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	for _, c := range ev.Criteria {
		pdf.Cell(120, 8, c.Name)
		pdf.Cell(0, 8, strconv.Itoa(c.Score))
		pdf.Ln(7)
	}
	pdf.Ln(5)

	pdf.Cell(0, 8, fmt.Sprintf("Total de puntos: %d", ev.TotalPoints))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Promedio final: %.2f", ev.FinalAverage))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Condicion del bono: %s", ev.BonusCondition))
	if ev.AuthorizedBy != "" {
		pdf.Ln(7)
		pdf.Cell(0, 8, fmt.Sprintf("Autorizado por: %s", ev.AuthorizedBy))
	}
	if ev.SalaryIncrease != "" {
		pdf.Ln(7)
		pdf.Cell(0, 8, fmt.Sprintf("Incremento salarial recomendado: %s", ev.SalaryIncrease))
	}
	if ev.Observations != "" {
		pdf.Ln(10)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Observaciones")
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 12)
		pdf.MultiCell(0, 6, ev.Observations, "", "L", false)
	}

	return pdf.Output(w)
}

// EmployeesCSV writes the employee collection as a spreadsheet-friendly
// export, one row per employee.
func EmployeesCSV(w io.Writer, list []employee.Employee) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "idNumber", "name", "role", "department", "managerName", "lastEvaluation", "weightedScore"}); err != nil {
		return err
	}
	for _, e := range list {
		record := []string{
			e.ID,
			e.IDNumber,
			e.Name,
			e.Role,
			e.Department,
			e.ManagerName,
			e.LastEvaluation,
			strconv.FormatFloat(e.WeightedScore(), 'f', 2, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
