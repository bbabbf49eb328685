package controlisyparser

import "bgledger/kontir/internal/models"

// MergeContractor folds a repeated contractor record into the one already
// seen for the same source id. Empty fields are filled from the incoming
// record; a non-empty field that disagrees marks the merge as conflicting
// and keeps the incoming value, so the last occurrence wins but the
// conflict is reported instead of silently resolved.
func MergeContractor(existing, incoming models.ImportContractor) (models.ImportContractor, bool) {
	merged := existing
	conflict := false

	mergeField := func(dst *string, src string) {
		if src == "" {
			return
		}
		if *dst != "" && *dst != src {
			conflict = true
		}
		*dst = src
	}

	mergeField(&merged.Name, incoming.Name)
	mergeField(&merged.EIK, incoming.EIK)
	mergeField(&merged.VatNumber, incoming.VatNumber)
	mergeField(&merged.InsideNumber, incoming.InsideNumber)

	return merged, conflict
}

// collectContractors deduplicates the contractor list by source id,
// recording the ids whose occurrences disagreed.
func collectContractors(raw []rawContractor) ([]models.ImportContractor, []string) {
	var (
		out       []models.ImportContractor
		conflicts []string
		index     = make(map[string]int)
		flagged   = make(map[string]bool)
	)

	for _, rc := range raw {
		incoming := models.ImportContractor{
			SourceID:     rc.ID,
			Name:         rc.Name,
			EIK:          rc.EIK,
			VatNumber:    rc.VatNumber,
			InsideNumber: rc.InsideNumber,
		}

		pos, seen := index[rc.ID]
		if !seen {
			index[rc.ID] = len(out)
			out = append(out, incoming)
			continue
		}

		merged, conflict := MergeContractor(out[pos], incoming)
		out[pos] = merged
		if conflict && !flagged[rc.ID] {
			flagged[rc.ID] = true
			conflicts = append(conflicts, rc.ID)
		}
	}
	return out, conflicts
}
