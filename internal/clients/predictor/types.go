package predictor

// Wire types for the external admission prediction service. Field names
// follow the service's API, which speaks romanized Vietnamese.

// L1Input is one priority/award-emphasis prediction input. Exactly one
// major code per record; at most one non-zero hsg slot.
type L1Input struct {
	ConductG10   int     `json:"hanh_kiem_10"`
	ConductG11   int     `json:"hanh_kiem_11"`
	ConductG12   int     `json:"hanh_kiem_12"`
	AcademicG10  int     `json:"hoc_luc_10"`
	AcademicG11  int     `json:"hoc_luc_11"`
	AcademicG12  int     `json:"hoc_luc_12"`
	Budget       int64   `json:"hoc_phi"`
	Province     string  `json:"tinh_tp"`
	SchoolType   int     `json:"loai_truong"`
	CertScore    float64 `json:"diem_cc"`
	GroupScore   float64 `json:"diem_to_hop"`
	SubjectGroup string  `json:"to_hop"`
	MajorCode    string  `json:"ma_nganh"`
	AwardFirst   int     `json:"hsg_1"`
	AwardSecond  int     `json:"hsg_2"`
	AwardThird   int     `json:"hsg_3"`
}

// L1Result carries one priority-type label and a map of admission codes to
// scores.
type L1Result struct {
	PriorityType   string             `json:"loai_uu_tien"`
	AdmissionCodes map[string]float64 `json:"ma_xet_tuyen"`
}

// L2Input is one score-emphasis prediction input.
type L2Input struct {
	ConductG10   int     `json:"hanh_kiem_10"`
	ConductG11   int     `json:"hanh_kiem_11"`
	ConductG12   int     `json:"hanh_kiem_12"`
	AcademicG10  int     `json:"hoc_luc_10"`
	AcademicG11  int     `json:"hoc_luc_11"`
	AcademicG12  int     `json:"hoc_luc_12"`
	Budget       int64   `json:"hoc_phi"`
	Province     string  `json:"tinh_tp"`
	SchoolType   int     `json:"loai_truong"`
	CertScore    float64 `json:"diem_cc"`
	GroupScore   float64 `json:"diem_to_hop"`
	SubjectGroup string  `json:"to_hop"`
	MajorCode    string  `json:"ma_nganh"`
}

// L2Result is one admission code with its predicted score.
type L2Result struct {
	AdmissionCode string  `json:"ma_xet_tuyen"`
	Score         float64 `json:"score"`
}
