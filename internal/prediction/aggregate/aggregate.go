// Package aggregate deduplicates and merges prediction results across all
// chunks. Merging is commutative and order-independent: any permutation of
// the same result set reduces to the same output.
package aggregate

import (
	"sort"

	"github.com/yungbote/admitbridge-backend/internal/clients/predictor"
)

// L1Entry is one merged L1 outcome: an admission code with its best score,
// grouped back under the priority-type label it originated from.
type L1Entry struct {
	PriorityType  string  `json:"loai_uu_tien"`
	AdmissionCode string  `json:"ma_xet_tuyen"`
	Score         float64 `json:"score"`
}

// MergeL1 merges by admission code, keeping the higher score, then groups
// the survivors by their originating priority type. Output order is stable
// (priority type, then code) so repeated runs compare equal.
func MergeL1(results []predictor.L1Result) []L1Entry {
	type winner struct {
		priority string
		score    float64
	}
	best := make(map[string]winner)
	for _, r := range results {
		for code, score := range r.AdmissionCodes {
			if code == "" {
				continue
			}
			cur, seen := best[code]
			// Ties on score break on the priority-type label so the
			// winner never depends on arrival order.
			if !seen || score > cur.score ||
				(score == cur.score && r.PriorityType < cur.priority) {
				best[code] = winner{priority: r.PriorityType, score: score}
			}
		}
	}

	out := make([]L1Entry, 0, len(best))
	for code, w := range best {
		out = append(out, L1Entry{PriorityType: w.priority, AdmissionCode: code, Score: w.score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PriorityType != out[j].PriorityType {
			return out[i].PriorityType < out[j].PriorityType
		}
		return out[i].AdmissionCode < out[j].AdmissionCode
	})
	return out
}

// MergeL2 merges by admission code only, keeping the higher score and
// discarding the loser entirely. Output is sorted by code.
func MergeL2(results []predictor.L2Result) []predictor.L2Result {
	best := make(map[string]float64)
	for _, r := range results {
		if r.AdmissionCode == "" {
			continue
		}
		cur, seen := best[r.AdmissionCode]
		if !seen || r.Score > cur {
			best[r.AdmissionCode] = r.Score
		}
	}

	out := make([]predictor.L2Result, 0, len(best))
	for code, score := range best {
		out = append(out, predictor.L2Result{AdmissionCode: code, Score: score})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AdmissionCode < out[j].AdmissionCode })
	return out
}

// AdmissionCodes returns the deduplicated union of codes from both merged
// result sets, sorted, for reconciliation against the catalogue.
func AdmissionCodes(l1 []L1Entry, l2 []predictor.L2Result) []string {
	seen := make(map[string]bool)
	for _, e := range l1 {
		seen[e.AdmissionCode] = true
	}
	for _, r := range l2 {
		seen[r.AdmissionCode] = true
	}
	out := make([]string, 0, len(seen))
	for code := range seen {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
