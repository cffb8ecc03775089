package evaluation

import "testing"

func TestScoreTenCriteria(t *testing.T) {
	criteria := make([]Criterion, 10)
	for i := range criteria {
		criteria[i] = Criterion{Name: "criterio", Score: 4}
	}

	summary := Score(criteria)
	if summary.TotalPoints != 40 {
		t.Fatalf("expected 40 total points, got %d", summary.TotalPoints)
	}
	if summary.FinalAverage != 4.00 {
		t.Fatalf("expected 4.00 average, got %v", summary.FinalAverage)
	}
	if summary.Percentage != 80 {
		t.Fatalf("expected 80%% performance, got %v", summary.Percentage)
	}
}

func TestScoreRoundsToTwoDecimals(t *testing.T) {
	criteria := []Criterion{{Score: 4}, {Score: 4}, {Score: 5}}

	summary := Score(criteria)
	if summary.TotalPoints != 13 {
		t.Fatalf("expected 13 total points, got %d", summary.TotalPoints)
	}
	if summary.FinalAverage != 4.33 {
		t.Fatalf("expected 4.33 average, got %v", summary.FinalAverage)
	}
}

func TestScoreEmptyCriteria(t *testing.T) {
	summary := Score(nil)
	if summary.TotalPoints != 0 || summary.FinalAverage != 0 || summary.Percentage != 0 {
		t.Fatalf("expected zero summary, got %+v", summary)
	}
}

func TestBonusCondition(t *testing.T) {
	cases := []struct {
		average float64
		want    string
	}{
		{4.8, BonusPendingAuth},
		{4.0, BonusPendingAuth},
		{3.5, BonusConditioned},
		{2.9, BonusNotApproved},
	}
	for _, tc := range cases {
		if got := BonusCondition(tc.average); got != tc.want {
			t.Fatalf("average %v: expected %s, got %s", tc.average, tc.want, got)
		}
	}
}

func TestSalaryIncrease(t *testing.T) {
	if got := SalaryIncrease(4.6); got != "5%" {
		t.Fatalf("expected 5%%, got %q", got)
	}
	if got := SalaryIncrease(4.1); got != "3%" {
		t.Fatalf("expected 3%%, got %q", got)
	}
	if got := SalaryIncrease(3.2); got != "" {
		t.Fatalf("expected no recommendation, got %q", got)
	}
}

func TestFinalizeDoesNotOverrideExistingState(t *testing.T) {
	e := FullEvaluation{
		Criteria:       []Criterion{{Score: 5}, {Score: 5}},
		BonusCondition: BonusApproved,
	}
	Finalize(&e)

	if e.BonusCondition != BonusApproved {
		t.Fatalf("expected state to stay Approved, got %s", e.BonusCondition)
	}
	if e.TotalPoints != 10 || e.FinalAverage != 5.00 {
		t.Fatalf("unexpected totals: %+v", e)
	}
}
