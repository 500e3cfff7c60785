package scenario

import (
	"testing"

	"github.com/yungbote/admitbridge-backend/internal/domain"
)

func countByType(ss []Scenario, t Type) int {
	n := 0
	for _, s := range ss {
		if s.Type == t {
			n++
		}
	}
	return n
}

func TestCollectNationalExam(t *testing.T) {
	p := &domain.StudentProfile{
		// Toán+Lý+Hóa+Anh covers A00, A01, D07 but not B00/C00/D01.
		NationalExamScores: map[string]float64{
			"Toán":      8.0,
			"Vật lý":    7.5,
			"Hóa học":   7.0,
			"Tiếng Anh": 9.0,
		},
	}
	got := Collect(p)
	if n := countByType(got, TypeNationalExam); n != 3 {
		t.Fatalf("expected 3 national-exam scenarios, got %d: %+v", n, got)
	}
	for _, s := range got {
		if s.SubjectGroup == "A00" && s.Score != 22.5 {
			t.Errorf("A00 score = %v want 22.5", s.Score)
		}
	}
}

func TestCollectSingleGroup(t *testing.T) {
	// Four subjects forming exactly one valid subject-group (C00 plus one
	// stray subject that completes nothing else).
	p := &domain.StudentProfile{
		NationalExamScores: map[string]float64{
			"Ngữ văn":  8.0,
			"Lịch sử":  7.0,
			"Địa lý":   6.5,
			"Sinh học": 5.0,
		},
	}
	got := Collect(p)
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 scenario, got %d: %+v", len(got), got)
	}
	if got[0].SubjectGroup != "C00" || got[0].Score != 21.5 {
		t.Errorf("got %+v, want C00 / 21.5", got[0])
	}
}

func TestCollectEmptyProfile(t *testing.T) {
	if got := Collect(&domain.StudentProfile{}); len(got) != 0 {
		t.Fatalf("empty profile must produce zero scenarios, got %+v", got)
	}
	if got := Collect(nil); got != nil {
		t.Fatalf("nil profile must produce nil, got %+v", got)
	}
}

func TestCollectVSAT(t *testing.T) {
	p := &domain.StudentProfile{
		VSATScores: map[string]float64{
			"Toán":      85,
			"Ngữ văn":   80,
			"Tiếng Anh": 90,
		},
	}
	got := Collect(p)
	if n := countByType(got, TypeVSAT); n != 3 {
		t.Fatalf("expected one VSAT scenario per eligible group (3), got %d", n)
	}
	for _, s := range got {
		if s.Score != 255 {
			t.Errorf("VSAT scenario score = %v want 255", s.Score)
		}
	}

	// Partial component set yields nothing.
	p.VSATScores = map[string]float64{"Toán": 85}
	if n := countByType(Collect(p), TypeVSAT); n != 0 {
		t.Fatalf("partial VSAT set must yield zero scenarios, got %d", n)
	}
}

func TestCollectAptitude(t *testing.T) {
	p := &domain.StudentProfile{AptitudeTest: &domain.AptitudeTest{Type: "DGNL_HCM", Score: 900}}
	if n := countByType(Collect(p), TypeAptitude); n != 1 {
		t.Fatalf("expected 1 aptitude scenario, got %d", n)
	}
	p.AptitudeTest.Score = -10
	if n := countByType(Collect(p), TypeAptitude); n != 0 {
		t.Fatal("non-positive aptitude score must yield zero scenarios")
	}
	p.AptitudeTest = &domain.AptitudeTest{Type: "NOPE", Score: 100}
	if n := countByType(Collect(p), TypeAptitude); n != 0 {
		t.Fatal("unknown aptitude test type must yield zero scenarios")
	}
}

func TestCollectCertificates(t *testing.T) {
	p := &domain.StudentProfile{
		Certificates: []domain.Certificate{
			{Type: "IELTS", Score: "7.0"},
			{Type: "IELTS", Score: "9.5"},    // out of range
			{Type: "SAT", Score: "garbage"},  // unparsable
			{Type: "UNKNOWN", Score: "10"},   // unrecognized
			{Type: "TOEFL_IBT", Score: "95"}, // valid
		},
	}
	got := Collect(p)
	if n := countByType(got, TypeCertificate); n != 2 {
		t.Fatalf("expected 2 certificate scenarios, got %d: %+v", n, got)
	}
}

func TestCollectTalent(t *testing.T) {
	p := &domain.StudentProfile{
		NationalExamScores: map[string]float64{"Ngữ văn": 8.0},
		TalentScores: map[string]float64{
			"Năng khiếu 1": 9.0,
			"Năng khiếu 2": 8.5,
		},
	}
	got := Collect(p)
	if n := countByType(got, TypeTalent); n != 1 {
		t.Fatalf("expected 1 talent scenario (H00), got %d: %+v", n, got)
	}
	for _, s := range got {
		if s.Type == TypeTalent {
			if s.SubjectGroup != "H00" || s.Score != 25.5 {
				t.Errorf("talent scenario = %+v, want H00 / 25.5", s)
			}
		}
	}

	// Talent score without the written-subject companion yields nothing.
	p.NationalExamScores = nil
	if n := countByType(Collect(p), TypeTalent); n != 0 {
		t.Fatal("incomplete talent group must yield zero scenarios")
	}
}
