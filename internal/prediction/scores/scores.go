// Package scores maps domain enums (conduct, academic performance,
// certificates, awards, majors) onto the numeric and categorical codes the
// external prediction service expects.
package scores

import (
	"strconv"
	"strings"
)

// ConductCode maps a conduct rating (hạnh kiểm) to its service code.
func ConductCode(conduct string) (int, bool) {
	switch strings.TrimSpace(conduct) {
	case "Tốt":
		return 3, true
	case "Khá":
		return 2, true
	case "Đạt", "Trung bình":
		return 1, true
	case "Chưa đạt", "Yếu":
		return 0, true
	default:
		return 0, false
	}
}

// AcademicRankCode maps an academic performance rating (học lực) to its
// service code.
func AcademicRankCode(rank string) (int, bool) {
	switch strings.TrimSpace(rank) {
	case "Tốt", "Giỏi":
		return 3, true
	case "Khá":
		return 2, true
	case "Đạt", "Trung bình":
		return 1, true
	case "Chưa đạt", "Yếu":
		return 0, true
	default:
		return 0, false
	}
}

// UniversityTypeFlag encodes the preferred university type. Unknown values
// fall back to "any".
func UniversityTypeFlag(t string) int {
	switch strings.TrimSpace(strings.ToLower(t)) {
	case "public", "công lập":
		return 1
	case "private", "tư thục":
		return 2
	default:
		return 0
	}
}

type certRange struct {
	min, max float64
}

// Each recognized certificate type defines its own valid numeric range.
var certRanges = map[string]certRange{
	"IELTS":     {0, 9},
	"TOEFL_IBT": {0, 120},
	"TOEIC":     {10, 990},
	"SAT":       {400, 1600},
	"ACT":       {1, 36},
}

// CertificateScore parses a raw certificate score and validates it against
// the type's range. Unrecognized types, unparsable values, and out-of-range
// scores all return ok=false; the caller excludes them silently.
func CertificateScore(certType, raw string) (float64, bool) {
	r, ok := certRanges[strings.ToUpper(strings.TrimSpace(certType))]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	if v < r.min || v > r.max {
		return 0, false
	}
	return v, true
}

// IsRecognizedCertificate reports whether the certificate type is known.
func IsRecognizedCertificate(certType string) bool {
	_, ok := certRanges[strings.ToUpper(strings.TrimSpace(certType))]
	return ok
}

// Aptitude test types and their maximum scores.
var aptitudeMax = map[string]float64{
	"DGNL_HCM": 1200,
	"DGNL_HN":  150,
	"DGTD_BK":  100,
}

// AptitudeTestValid reports whether the aptitude test type is known and the
// score is positive and within the test's scale.
func AptitudeTestValid(testType string, score float64) bool {
	max, ok := aptitudeMax[strings.ToUpper(strings.TrimSpace(testType))]
	if !ok {
		return false
	}
	return score > 0 && score <= max
}

// SubjectGroups maps a subject-group key (tổ hợp) to its member subjects.
var SubjectGroups = map[string][]string{
	"A00": {"Toán", "Vật lý", "Hóa học"},
	"A01": {"Toán", "Vật lý", "Tiếng Anh"},
	"B00": {"Toán", "Hóa học", "Sinh học"},
	"C00": {"Ngữ văn", "Lịch sử", "Địa lý"},
	"D01": {"Toán", "Ngữ văn", "Tiếng Anh"},
	"D07": {"Toán", "Hóa học", "Tiếng Anh"},
	"H00": {"Ngữ văn", "Năng khiếu 1", "Năng khiếu 2"},
	"V00": {"Toán", "Vật lý", "Vẽ mỹ thuật"},
	"T00": {"Toán", "Sinh học", "Năng khiếu TDTT"},
}

// Subjects scored by talent assessment rather than written exams.
var talentSubjects = map[string]bool{
	"Năng khiếu 1":    true,
	"Năng khiếu 2":    true,
	"Vẽ mỹ thuật":     true,
	"Năng khiếu TDTT": true,
}

// IsTalentSubject reports whether the subject is talent-scored.
func IsTalentSubject(subject string) bool {
	return talentSubjects[strings.TrimSpace(subject)]
}

// GroupHasTalentSubject reports whether a subject group contains at least
// one talent-scored subject.
func GroupHasTalentSubject(groupKey string) bool {
	for _, s := range SubjectGroups[groupKey] {
		if IsTalentSubject(s) {
			return true
		}
	}
	return false
}

// VSAT is sat on a fixed three-subject component set.
var vsatSubjects = []string{"Toán", "Ngữ văn", "Tiếng Anh"}

// VSATSubjects returns the component subjects of the VSAT battery.
func VSATSubjects() []string { return vsatSubjects }

// Subject-groups a VSAT total may be applied to.
var vsatEligibleGroups = []string{"A00", "A01", "D01"}

// VSATEligibleGroups returns the subject-group keys a VSAT total score can
// stand in for.
func VSATEligibleGroups() []string { return vsatEligibleGroups }

// SubjectCode maps an award subject to the numeric code carried in the
// hsg_1/hsg_2/hsg_3 slots.
var subjectCodes = map[string]int{
	"Toán":       1,
	"Vật lý":     2,
	"Hóa học":    3,
	"Sinh học":   4,
	"Ngữ văn":    5,
	"Lịch sử":    6,
	"Địa lý":     7,
	"Tiếng Anh":  8,
	"Tin học":    9,
	"Giáo dục công dân": 10,
}

func SubjectCode(subject string) (int, bool) {
	c, ok := subjectCodes[strings.TrimSpace(subject)]
	return c, ok
}

// MajorCode resolves a major name to the service's numeric major code.
// Names not in the table cannot be predicted and are skipped upstream.
var majorCodes = map[string]string{
	"Công nghệ thông tin":       "7480201",
	"Khoa học máy tính":         "7480101",
	"Kỹ thuật phần mềm":         "7480103",
	"Y khoa":                    "7720101",
	"Dược học":                  "7720201",
	"Quản trị kinh doanh":       "7340101",
	"Kinh tế":                   "7310101",
	"Tài chính - Ngân hàng":     "7340201",
	"Kế toán":                   "7340301",
	"Luật":                      "7380101",
	"Ngôn ngữ Anh":              "7220201",
	"Sư phạm Toán học":          "7140209",
	"Kiến trúc":                 "7580101",
	"Thiết kế đồ họa":           "7210403",
	"Truyền thông đa phương tiện": "7320104",
	"Logistics và Quản lý chuỗi cung ứng": "7510605",
}

func MajorCode(majorName string) (string, bool) {
	c, ok := majorCodes[strings.TrimSpace(majorName)]
	return c, ok
}
