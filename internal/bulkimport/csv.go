package bulkimport

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/unicode/norm"

	"vulcanhr/internal/domain/employee"
)

// RowIssue reports why one CSV line was rejected. Line numbers are
// 1-based and include the header.
type RowIssue struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type Result struct {
	Employees []employee.Employee `json:"employees"`
	Issues    []RowIssue          `json:"issues"`
}

var header = []string{"idNumber", "name", "role", "department", "managerName"}

// Parse reads a bulk employee CSV exported from spreadsheets in the
// field. Input may arrive as UTF-8 (with or without BOM), UTF-16 or
// Latin-1; everything is normalized to NFC UTF-8 before parsing. Rows
// that fail validation are reported and skipped, they never abort the
// rest of the file.
func Parse(data []byte) (Result, error) {
	decoded, err := decode(data)
	if err != nil {
		return Result{}, err
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.TrimLeadingSpace = true

	first, err := reader.Read()
	if err == io.EOF {
		return Result{}, fmt.Errorf("empty file")
	}
	if err != nil {
		return Result{}, err
	}
	if !isHeader(first) {
		return Result{}, fmt.Errorf("unexpected header %v, want %v", first, header)
	}

	result := Result{Employees: []employee.Employee{}}
	line := 1
	for {
		record, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Issues = append(result.Issues, RowIssue{Line: line, Reason: err.Error()})
			continue
		}
		emp, issue := parseRow(record)
		if issue != "" {
			result.Issues = append(result.Issues, RowIssue{Line: line, Reason: issue})
			continue
		}
		result.Employees = append(result.Employees, emp)
	}
	return result, nil
}

func parseRow(record []string) (employee.Employee, string) {
	if len(record) != len(header) {
		return employee.Employee{}, fmt.Sprintf("expected %d columns, got %d", len(header), len(record))
	}
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}

	if record[1] == "" {
		return employee.Employee{}, "name is required"
	}
	department := strings.ToLower(record[3])
	if !employee.ValidDepartment(department) {
		return employee.Employee{}, fmt.Sprintf("unknown department %q", record[3])
	}

	return employee.Employee{
		ID:            uuid.NewString(),
		IDNumber:      record[0],
		Name:          record[1],
		Role:          record[2],
		Department:    department,
		ManagerName:   record[4],
		KPIs:          []employee.KPI{},
		Notifications: []employee.Notification{},
	}, ""
}

func isHeader(record []string) bool {
	if len(record) != len(header) {
		return false
	}
	for i, want := range header {
		if !strings.EqualFold(strings.TrimSpace(record[i]), want) {
			return false
		}
	}
	return true
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decode sniffs the charset by BOM, falls back to Latin-1 for byte soup
// that is not valid UTF-8, and NFC-normalizes the result so accented
// names compare equal regardless of the source editor.
func decode(data []byte) ([]byte, error) {
	var (
		decoded []byte
		err     error
	)
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		decoded = data[len(bomUTF8):]
	case bytes.HasPrefix(data, bomUTF16LE):
		decoded, err = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(data[len(bomUTF16LE):])
	case bytes.HasPrefix(data, bomUTF16BE):
		decoded, err = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder().Bytes(data[len(bomUTF16BE):])
	case utf8.Valid(data):
		decoded = data
	default:
		decoded, err = charmap.ISO8859_1.NewDecoder().Bytes(data)
	}
	if err != nil {
		return nil, err
	}
	return norm.NFC.Bytes(decoded), nil
}
