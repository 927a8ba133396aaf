package submission

import (
	"sort"

	"github.com/mbolis/teamsurvey/model"
)

// Shape returns a copy of r with its answers ordered by question sort order.
// Answers whose question is gone go last, keeping their relative order.
func Shape(r model.Response) model.Response {
	shaped := r
	shaped.Answers = make([]model.Answer, len(r.Answers))
	copy(shaped.Answers, r.Answers)

	sort.SliceStable(shaped.Answers, func(i, j int) bool {
		qi, qj := shaped.Answers[i].Question, shaped.Answers[j].Question
		switch {
		case qi == nil:
			return false
		case qj == nil:
			return true
		default:
			return qi.SortOrder < qj.SortOrder
		}
	})
	return shaped
}
