package aggregate

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/yungbote/admitbridge-backend/internal/clients/predictor"
)

func TestMergeL2KeepsHighestScore(t *testing.T) {
	in := []predictor.L2Result{
		{AdmissionCode: "XT001", Score: 0.42},
		{AdmissionCode: "XT002", Score: 0.91},
		{AdmissionCode: "XT001", Score: 0.87},
		{AdmissionCode: "XT002", Score: 0.13},
	}
	got := MergeL2(in)
	if len(got) != 2 {
		t.Fatalf("expected 2 merged results, got %d", len(got))
	}
	for _, r := range got {
		switch r.AdmissionCode {
		case "XT001":
			if r.Score != 0.87 {
				t.Errorf("XT001 score = %v want 0.87", r.Score)
			}
		case "XT002":
			if r.Score != 0.91 {
				t.Errorf("XT002 score = %v want 0.91", r.Score)
			}
		}
	}
}

func TestMergeL2OrderIndependent(t *testing.T) {
	in := []predictor.L2Result{
		{AdmissionCode: "XT003", Score: 0.5},
		{AdmissionCode: "XT001", Score: 0.9},
		{AdmissionCode: "XT002", Score: 0.7},
		{AdmissionCode: "XT001", Score: 0.3},
		{AdmissionCode: "XT003", Score: 0.8},
	}
	want := MergeL2(in)
	for i := 0; i < 10; i++ {
		shuffled := append([]predictor.L2Result(nil), in...)
		rand.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if got := MergeL2(shuffled); !reflect.DeepEqual(got, want) {
			t.Fatalf("merge is order-dependent: %v != %v", got, want)
		}
	}
}

func TestMergeL2Idempotent(t *testing.T) {
	in := []predictor.L2Result{
		{AdmissionCode: "XT001", Score: 0.9},
		{AdmissionCode: "XT001", Score: 0.2},
		{AdmissionCode: "XT002", Score: 0.6},
	}
	once := MergeL2(in)
	twice := MergeL2(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("aggregator is not idempotent: %v != %v", once, twice)
	}
}

func TestMergeL2HighestScoreInvariant(t *testing.T) {
	in := []predictor.L2Result{
		{AdmissionCode: "XT001", Score: 0.4},
		{AdmissionCode: "XT001", Score: 0.6},
		{AdmissionCode: "XT001", Score: 0.5},
	}
	got := MergeL2(in)
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	for _, r := range in {
		if got[0].Score < r.Score {
			t.Errorf("merged score %v is below input score %v", got[0].Score, r.Score)
		}
	}
}

func TestMergeL2DropsEmptyCodes(t *testing.T) {
	got := MergeL2([]predictor.L2Result{{AdmissionCode: "", Score: 1.0}})
	if len(got) != 0 {
		t.Fatalf("results without a code must be discarded, got %v", got)
	}
}

func TestMergeL1GroupsByPriorityType(t *testing.T) {
	in := []predictor.L1Result{
		{PriorityType: "hsg", AdmissionCodes: map[string]float64{"XT001": 0.8, "XT002": 0.5}},
		{PriorityType: "uu_tien_xet_tuyen", AdmissionCodes: map[string]float64{"XT003": 0.9}},
		{PriorityType: "hsg", AdmissionCodes: map[string]float64{"XT001": 0.3}},
	}
	got := MergeL1(in)
	if len(got) != 3 {
		t.Fatalf("expected 3 merged entries, got %d: %v", len(got), got)
	}
	for _, e := range got {
		if e.AdmissionCode == "XT001" {
			if e.Score != 0.8 || e.PriorityType != "hsg" {
				t.Errorf("XT001 entry = %+v", e)
			}
		}
	}
}

func TestMergeL1OrderIndependentOnTies(t *testing.T) {
	in := []predictor.L1Result{
		{PriorityType: "hsg", AdmissionCodes: map[string]float64{"XT001": 0.5}},
		{PriorityType: "uu_tien_xet_tuyen", AdmissionCodes: map[string]float64{"XT001": 0.5}},
		{PriorityType: "diem", AdmissionCodes: map[string]float64{"XT002": 0.7, "XT001": 0.5}},
	}
	want := MergeL1(in)
	for i := 0; i < 10; i++ {
		shuffled := append([]predictor.L1Result(nil), in...)
		rand.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if got := MergeL1(shuffled); !reflect.DeepEqual(got, want) {
			t.Fatalf("merge is order-dependent on score tie: %v != %v", got, want)
		}
	}
	for _, e := range want {
		if e.AdmissionCode == "XT001" && e.PriorityType != "diem" {
			t.Errorf("tied XT001 should keep the smallest priority label, got %q", e.PriorityType)
		}
	}
}

func TestMergeL1Idempotent(t *testing.T) {
	in := []predictor.L1Result{
		{PriorityType: "hsg", AdmissionCodes: map[string]float64{"XT001": 0.8, "XT002": 0.5}},
		{PriorityType: "diem", AdmissionCodes: map[string]float64{"XT002": 0.7}},
	}
	once := MergeL1(in)

	// Feed the merged entries back through as one result per entry.
	back := make([]predictor.L1Result, 0, len(once))
	for _, e := range once {
		back = append(back, predictor.L1Result{
			PriorityType:   e.PriorityType,
			AdmissionCodes: map[string]float64{e.AdmissionCode: e.Score},
		})
	}
	twice := MergeL1(back)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("L1 merge is not idempotent: %v != %v", once, twice)
	}
}

func TestAdmissionCodesUnion(t *testing.T) {
	l1 := []L1Entry{
		{PriorityType: "hsg", AdmissionCode: "XT001", Score: 0.8},
		{PriorityType: "hsg", AdmissionCode: "XT002", Score: 0.6},
	}
	l2 := []predictor.L2Result{
		{AdmissionCode: "XT002", Score: 0.7},
		{AdmissionCode: "XT003", Score: 0.9},
	}
	got := AdmissionCodes(l1, l2)
	want := []string{"XT001", "XT002", "XT003"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("AdmissionCodes = %v want %v", got, want)
	}
}
