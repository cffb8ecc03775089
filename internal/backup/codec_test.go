package backup

import (
	"reflect"
	"testing"
	"unicode"

	"vulcanhr/internal/domain/employee"
	"vulcanhr/internal/domain/evaluation"
	"vulcanhr/internal/domain/user"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	snapshot := Snapshot{
		Employees: []employee.Employee{
			{ID: "e1", Name: "Ramón Núñez", Department: employee.DepartmentCalidad, KPIs: []employee.KPI{{Name: "señalización", Score: 88, Weight: 100}}},
		},
		Evaluations: []evaluation.FullEvaluation{
			{ID: "ev1", EmployeeID: "e1", Month: "enero", Year: "2024", FinalAverage: 4.33},
		},
		Users: []user.User{{Username: "rrhh1", Role: user.RoleRRHH}},
	}

	code, err := Encode(snapshot)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for _, r := range code {
		if !unicode.IsPrint(r) {
			t.Fatalf("backup code contains non-printable rune %q", r)
		}
	}

	got, err := Decode(code)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, snapshot) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, snapshot)
	}
}

func TestEncodeDecodeEmptyCollections(t *testing.T) {
	snapshot := Snapshot{
		Employees:   []employee.Employee{},
		Evaluations: []evaluation.FullEvaluation{},
		Users:       []user.User{},
	}

	code, err := Encode(snapshot)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(code)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Employees == nil || got.Evaluations == nil || got.Users == nil {
		t.Fatalf("empty collections must survive the round trip, got %+v", got)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode("not-valid-base64-or-json!!"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
	// Valid base64 of something that is not JSON.
	if _, err := Decode("bm90LWpzb24="); err == nil {
		t.Fatal("expected error for non-JSON payload")
	}
}
