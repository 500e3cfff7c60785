// Package scenario derives every valid exam scenario from a student's
// available academic data. Absence of data yields zero scenarios of that
// type, never a defaulted one.
package scenario

import (
	"sort"

	"github.com/yungbote/admitbridge-backend/internal/domain"
	"github.com/yungbote/admitbridge-backend/internal/prediction/scores"
)

type Type string

const (
	TypeNationalExam Type = "thpt"
	TypeVSAT         Type = "vsat"
	TypeAptitude     Type = "dgnl"
	TypeCertificate  Type = "chung_chi"
	TypeTalent       Type = "nang_khieu"
)

// Scenario is one candidate (subject-group-or-test, score) basis for an
// admission prediction.
type Scenario struct {
	SubjectGroup string
	Score        float64
	Type         Type
}

// Collect walks the profile and returns all derivable scenarios in a
// stable order.
func Collect(p *domain.StudentProfile) []Scenario {
	if p == nil {
		return nil
	}
	out := make([]Scenario, 0, 8)
	out = append(out, nationalExamScenarios(p)...)
	out = append(out, vsatScenarios(p)...)
	out = append(out, aptitudeScenarios(p)...)
	out = append(out, certificateScenarios(p)...)
	out = append(out, talentScenarios(p)...)
	return out
}

// A national-exam scenario exists only when every subject of a group is
// present among the student's exam scores; its score is their sum.
func nationalExamScenarios(p *domain.StudentProfile) []Scenario {
	if len(p.NationalExamScores) == 0 {
		return nil
	}
	var out []Scenario
	for _, group := range sortedGroupKeys() {
		subjects := scores.SubjectGroups[group]
		sum := 0.0
		complete := true
		for _, s := range subjects {
			v, ok := p.NationalExamScores[s]
			if !ok {
				complete = false
				break
			}
			sum += v
		}
		if complete {
			out = append(out, Scenario{SubjectGroup: group, Score: sum, Type: TypeNationalExam})
		}
	}
	return out
}

// A VSAT scenario exists once per eligible subject-group when the full
// component score set was supplied; its score is the battery total.
func vsatScenarios(p *domain.StudentProfile) []Scenario {
	if len(p.VSATScores) == 0 {
		return nil
	}
	total := 0.0
	for _, s := range scores.VSATSubjects() {
		v, ok := p.VSATScores[s]
		if !ok {
			return nil
		}
		total += v
	}
	groups := scores.VSATEligibleGroups()
	out := make([]Scenario, 0, len(groups))
	for _, g := range groups {
		out = append(out, Scenario{SubjectGroup: g, Score: total, Type: TypeVSAT})
	}
	return out
}

func aptitudeScenarios(p *domain.StudentProfile) []Scenario {
	at := p.AptitudeTest
	if at == nil || !scores.AptitudeTestValid(at.Type, at.Score) {
		return nil
	}
	return []Scenario{{SubjectGroup: at.Type, Score: at.Score, Type: TypeAptitude}}
}

// Certificates with unknown types, unparsable scores, or out-of-range
// values are excluded silently; the catalogue of valid ranges lives in the
// scores package.
func certificateScenarios(p *domain.StudentProfile) []Scenario {
	var out []Scenario
	for _, c := range p.Certificates {
		v, ok := scores.CertificateScore(c.Type, c.Score)
		if !ok {
			continue
		}
		out = append(out, Scenario{SubjectGroup: c.Type, Score: v, Type: TypeCertificate})
	}
	return out
}

// A talent scenario exists per subject-group containing at least one
// talent-scored subject the student actually has a score for. Written
// subjects in the group still need national-exam scores; the group score is
// the sum of both kinds.
func talentScenarios(p *domain.StudentProfile) []Scenario {
	if len(p.TalentScores) == 0 {
		return nil
	}
	var out []Scenario
	for _, group := range sortedGroupKeys() {
		if !scores.GroupHasTalentSubject(group) {
			continue
		}
		sum := 0.0
		complete := true
		hasTalent := false
		for _, s := range scores.SubjectGroups[group] {
			if scores.IsTalentSubject(s) {
				v, ok := p.TalentScores[s]
				if !ok {
					complete = false
					break
				}
				sum += v
				hasTalent = true
				continue
			}
			v, ok := p.NationalExamScores[s]
			if !ok {
				complete = false
				break
			}
			sum += v
		}
		if complete && hasTalent {
			out = append(out, Scenario{SubjectGroup: group, Score: sum, Type: TypeTalent})
		}
	}
	return out
}

func sortedGroupKeys() []string {
	keys := make([]string, 0, len(scores.SubjectGroups))
	for k := range scores.SubjectGroups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
