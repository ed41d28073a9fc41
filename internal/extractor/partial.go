package extractor

import (
	"sort"

	"github.com/robert-at-pretension-io/notifygen/internal/model"
)

// AddPartialModifiers inserts "partial " before the keyword of every
// container in the candidates' chains that is not already partial. The
// source is returned unchanged when nothing needs fixing.
func AddPartialModifiers(source []byte, candidates []Candidate) ([]byte, []model.Container) {
	seen := make(map[int]bool)
	var fixes []model.Container
	for _, cand := range candidates {
		for _, c := range cand.Chain.Containers {
			if c.Partial || seen[c.KeywordStart] {
				continue
			}
			seen[c.KeywordStart] = true
			fixes = append(fixes, c)
		}
	}
	if len(fixes) == 0 {
		return source, nil
	}

	// Edit back to front so earlier offsets stay valid.
	sort.Slice(fixes, func(i, j int) bool { return fixes[i].KeywordStart > fixes[j].KeywordStart })
	out := append([]byte(nil), source...)
	for _, c := range fixes {
		at := c.KeywordStart
		out = append(out[:at], append([]byte("partial "), out[at:]...)...)
	}

	sort.Slice(fixes, func(i, j int) bool { return fixes[i].KeywordStart < fixes[j].KeywordStart })
	return out, fixes
}
