package content

import "github.com/Araychaudhur/portfolio-2025/internal/model"

// Dedupe enforces (url, heading) uniqueness across the combined extractor
// output. Sending two rows with the same conflict key in one upsert batch
// makes postgres reject the whole statement, so this must run before any
// write. On collision the longer content wins; ties keep the first seen.
// First-seen key order is preserved.
func Dedupe(records []model.ContentRecord) []model.ContentRecord {
	index := make(map[string]int, len(records))
	out := make([]model.ContentRecord, 0, len(records))
	for _, r := range records {
		key := r.URL + "||" + r.Heading
		if i, ok := index[key]; ok {
			if len(r.Content) > len(out[i].Content) {
				out[i] = r
			}
			continue
		}
		index[key] = len(out)
		out = append(out, r)
	}
	return out
}
