// Package combo builds the flat prediction input records the external
// service consumes: the cartesian product of scenarios, certificates,
// target majors and (for L1) award ranks.
package combo

import (
	"fmt"

	"github.com/yungbote/admitbridge-backend/internal/clients/predictor"
	"github.com/yungbote/admitbridge-backend/internal/domain"
	pkgerrors "github.com/yungbote/admitbridge-backend/internal/pkg/errors"
	"github.com/yungbote/admitbridge-backend/internal/platform/logger"
	"github.com/yungbote/admitbridge-backend/internal/prediction/scenario"
	"github.com/yungbote/admitbridge-backend/internal/prediction/scores"
)

type Generator struct {
	log *logger.Logger
}

func NewGenerator(log *logger.Logger) *Generator {
	return &Generator{log: log.With("component", "CombinationGenerator")}
}

// certOption is one certificate axis value; Zero marks the "no certificate"
// placeholder so the product never collapses to nothing.
type certOption struct {
	Score float64
}

func certOptions(p *domain.StudentProfile) []certOption {
	var opts []certOption
	for _, c := range p.Certificates {
		if v, ok := scores.CertificateScore(c.Type, c.Score); ok {
			opts = append(opts, certOption{Score: v})
		}
	}
	if len(opts) == 0 {
		opts = append(opts, certOption{Score: 0})
	}
	return opts
}

type base struct {
	conductG10, conductG11, conductG12    int
	academicG10, academicG11, academicG12 int
	schoolType                            int
}

func profileBase(p *domain.StudentProfile) base {
	var b base
	b.conductG10, _ = scores.ConductCode(p.Conducts["10"])
	b.conductG11, _ = scores.ConductCode(p.Conducts["11"])
	b.conductG12, _ = scores.ConductCode(p.Conducts["12"])
	b.academicG10, _ = scores.AcademicRankCode(p.AcademicPerformance["10"])
	b.academicG11, _ = scores.AcademicRankCode(p.AcademicPerformance["11"])
	b.academicG12, _ = scores.AcademicRankCode(p.AcademicPerformance["12"])
	b.schoolType = scores.UniversityTypeFlag(p.UniversityType)
	return b
}

// resolveMajors maps target major names to service codes, skipping the
// unresolvable ones with a warning. Partial generation is acceptable.
func (g *Generator) resolveMajors(p *domain.StudentProfile) []string {
	codes := make([]string, 0, len(p.TargetMajors))
	for _, name := range p.TargetMajors {
		code, ok := scores.MajorCode(name)
		if !ok {
			g.log.Warn("Skipping unresolvable target major", "major", name)
			continue
		}
		codes = append(codes, code)
	}
	return codes
}

// awardSlot is one L1 award axis value; all-zero means "no award".
type awardSlot struct {
	first, second, third int
}

func awardSlots(g *Generator, p *domain.StudentProfile) []awardSlot {
	var slots []awardSlot
	for _, a := range p.Awards {
		code, ok := scores.SubjectCode(a.Subject)
		if !ok {
			g.log.Warn("Skipping award with unknown subject", "subject", a.Subject)
			continue
		}
		switch a.Rank {
		case domain.AwardRankFirst:
			slots = append(slots, awardSlot{first: code})
		case domain.AwardRankSecond:
			slots = append(slots, awardSlot{second: code})
		case domain.AwardRankThird:
			slots = append(slots, awardSlot{third: code})
		default:
			g.log.Warn("Skipping award with unknown rank", "rank", string(a.Rank))
		}
	}
	if len(slots) == 0 {
		slots = append(slots, awardSlot{})
	}
	return slots
}

// GenerateL2 produces scenarios × certificates × majors records.
func (g *Generator) GenerateL2(p *domain.StudentProfile, scenarios []scenario.Scenario) ([]predictor.L2Input, error) {
	if p == nil {
		return nil, fmt.Errorf("generate l2: %w", pkgerrors.ErrInvalidArgument)
	}
	b := profileBase(p)
	certs := certOptions(p)
	majors := g.resolveMajors(p)

	out := make([]predictor.L2Input, 0, len(scenarios)*len(certs)*len(majors))
	for _, sc := range scenarios {
		for _, cert := range certs {
			for _, major := range majors {
				out = append(out, predictor.L2Input{
					ConductG10:   b.conductG10,
					ConductG11:   b.conductG11,
					ConductG12:   b.conductG12,
					AcademicG10:  b.academicG10,
					AcademicG11:  b.academicG11,
					AcademicG12:  b.academicG12,
					Budget:       p.BudgetCeiling,
					Province:     p.Province,
					SchoolType:   b.schoolType,
					CertScore:    cert.Score,
					GroupScore:   sc.Score,
					SubjectGroup: sc.SubjectGroup,
					MajorCode:    major,
				})
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("generate l2: empty input set: %w", pkgerrors.ErrNoInputs)
	}
	return out, nil
}

// GenerateL1 additionally crosses with award ranks: one record per award,
// carrying the subject code in the matching hsg slot and zeros elsewhere.
func (g *Generator) GenerateL1(p *domain.StudentProfile, scenarios []scenario.Scenario) ([]predictor.L1Input, error) {
	if p == nil {
		return nil, fmt.Errorf("generate l1: %w", pkgerrors.ErrInvalidArgument)
	}
	b := profileBase(p)
	certs := certOptions(p)
	majors := g.resolveMajors(p)
	slots := awardSlots(g, p)

	out := make([]predictor.L1Input, 0, len(scenarios)*len(certs)*len(majors)*len(slots))
	for _, sc := range scenarios {
		for _, cert := range certs {
			for _, major := range majors {
				for _, slot := range slots {
					out = append(out, predictor.L1Input{
						ConductG10:   b.conductG10,
						ConductG11:   b.conductG11,
						ConductG12:   b.conductG12,
						AcademicG10:  b.academicG10,
						AcademicG11:  b.academicG11,
						AcademicG12:  b.academicG12,
						Budget:       p.BudgetCeiling,
						Province:     p.Province,
						SchoolType:   b.schoolType,
						CertScore:    cert.Score,
						GroupScore:   sc.Score,
						SubjectGroup: sc.SubjectGroup,
						MajorCode:    major,
						AwardFirst:   slot.first,
						AwardSecond:  slot.second,
						AwardThird:   slot.third,
					})
				}
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("generate l1: empty input set: %w", pkgerrors.ErrNoInputs)
	}
	return out, nil
}
