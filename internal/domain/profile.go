package domain

import "encoding/json"

// StudentProfile is the validated academic snapshot stored in the student
// row's jsonb profile column. The intake CRUD owns writing it; the
// prediction pipeline only reads it.
type StudentProfile struct {
	// Conduct and academic performance per grade (keys "10", "11", "12").
	Conducts            map[string]string `json:"conducts"`
	AcademicPerformance map[string]string `json:"academic_performance"`

	// National high-school exam scores keyed by subject name.
	NationalExamScores map[string]float64 `json:"national_exam_scores,omitempty"`

	// Optional aptitude test (ĐGNL/ĐGTD) result.
	AptitudeTest *AptitudeTest `json:"aptitude_test,omitempty"`

	// Optional international certificates; raw score kept as supplied.
	Certificates []Certificate `json:"certificates,omitempty"`

	// Optional excellent-student awards.
	Awards []Award `json:"awards,omitempty"`

	// Optional talent subject scores (năng khiếu) keyed by subject name.
	TalentScores map[string]float64 `json:"talent_scores,omitempty"`

	// Optional VSAT component scores keyed by subject name.
	VSATScores map[string]float64 `json:"vsat_scores,omitempty"`

	TargetMajors []string `json:"target_majors"`

	BudgetCeiling  int64  `json:"budget_ceiling,omitempty"`
	Province       string `json:"province,omitempty"`
	UniversityType string `json:"university_type,omitempty"`
}

type AptitudeTest struct {
	Type  string  `json:"type"`
	Score float64 `json:"score"`
}

type Certificate struct {
	Type  string `json:"type"`
	Score string `json:"score"`
}

type AwardRank string

const (
	AwardRankFirst  AwardRank = "FIRST"
	AwardRankSecond AwardRank = "SECOND"
	AwardRankThird  AwardRank = "THIRD"
)

type Award struct {
	Rank    AwardRank `json:"rank"`
	Subject string    `json:"subject"`
}

// DecodeProfile unmarshals the student's jsonb profile snapshot.
func (s *Student) DecodeProfile() (*StudentProfile, error) {
	var p StudentProfile
	if len(s.Profile) == 0 {
		return &p, nil
	}
	if err := json.Unmarshal(s.Profile, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
