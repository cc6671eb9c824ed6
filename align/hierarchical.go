package align

// CutRange is a half-open [start, end) index window applied to a series
// before alignment.
type CutRange struct {
	Start int
	End   int
}

func (c CutRange) apply(s []float64) []float64 {
	start, end := c.Start, c.End
	if end <= 0 || end > len(s) {
		end = len(s)
	}
	if start < 0 {
		start = 0
	}
	if start > end {
		return nil
	}
	return s[start:end]
}

// Hierarchical computes per-series integer offsets for the legacy
// multi-file alignment surface. groups maps a group name to its ordered
// member series ids; series carries each series id's raw samples;
// cutRanges optionally restricts each series before correlation.
// referenceGroup, if present and non-empty, shifts every group's offsets
// by the lag between its template and the reference template.
func Hierarchical(groups map[string][]string, series map[string][]float64, cutRanges map[string]CutRange, referenceGroup string) map[string]int {
	offsets := make(map[string]int)
	templates := make(map[string]string) // group -> template series id

	for name, members := range groups {
		if len(members) == 0 {
			continue
		}
		template := members[0]
		templates[name] = template
		offsets[template] = 0

		templateSignal := cut(series, cutRanges, template)
		for _, member := range members[1:] {
			targetSignal, ok := series[member]
			if !ok {
				offsets[member] = 0
				continue
			}
			targetSignal = cutValue(targetSignal, cutRanges, member)
			if len(templateSignal) < 2 || len(targetSignal) < 2 {
				offsets[member] = 0
				continue
			}
			offsets[member] = Lag(templateSignal, targetSignal)
		}
	}

	refTemplate, refOK := templates[referenceGroup]
	refMembers, groupOK := groups[referenceGroup]
	if referenceGroup == "" || !refOK || !groupOK || len(refMembers) == 0 {
		return offsets
	}
	refSignal := cut(series, cutRanges, refTemplate)

	for name, members := range groups {
		if name == referenceGroup || len(members) == 0 {
			continue
		}
		otherTemplate := templates[name]
		otherSignal := cut(series, cutRanges, otherTemplate)
		if len(refSignal) < 2 || len(otherSignal) < 2 {
			continue
		}
		delta := Lag(refSignal, otherSignal)
		for _, member := range members {
			offsets[member] += delta
		}
	}

	return offsets
}

func cut(series map[string][]float64, cutRanges map[string]CutRange, id string) []float64 {
	s, ok := series[id]
	if !ok {
		return nil
	}
	return cutValue(s, cutRanges, id)
}

func cutValue(s []float64, cutRanges map[string]CutRange, id string) []float64 {
	if cr, ok := cutRanges[id]; ok {
		return cr.apply(s)
	}
	return s
}
