package extraction

// Merge combines per-document extraction results into one aggregate.
// List fields are concatenated in input order with no deduplication or
// reordering; the incident is the first non-empty one encountered, and
// later incidents never overwrite it even when the first is partial.
// Deterministic for a fixed input order.
func Merge(results []ExtractedData) ExtractedData {
	merged := ExtractedData{
		Parties:  make([]Party, 0),
		Damages:  make([]Damage, 0),
		Timeline: make([]TimelineEvent, 0),
		Claims:   make([]Claim, 0),
	}

	for _, r := range results {
		merged.Parties = append(merged.Parties, r.Parties...)
		merged.Damages = append(merged.Damages, r.Damages...)
		merged.Timeline = append(merged.Timeline, r.Timeline...)
		merged.Claims = append(merged.Claims, r.Claims...)

		if merged.Incident == nil && !r.Incident.Empty() {
			incident := *r.Incident
			merged.Incident = &incident
		}
	}

	return merged
}
