// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

package rank

// MergeAnnotations attaches external probability estimates to an
// already-ranked result by place ID. The merge never changes order:
// annotations are advisory display data, not rank input. IDs with no
// match in the result are ignored, and places with no annotation keep a
// nil Annotation. Safe to call with a nil or empty map.
func MergeAnnotations(result *RankingResult, annotations map[string]Annotation) {
	if result == nil || len(annotations) == 0 {
		return
	}
	attach := func(p *ScoredPlace) {
		if a, ok := annotations[p.ID]; ok {
			copied := a
			p.Annotation = &copied
		}
	}
	if result.Recommended != nil {
		attach(result.Recommended)
	}
	for i := range result.Others {
		attach(&result.Others[i])
	}
}
