package catalog

import "strings"

// FilterBlp returns the entries whose specification contains query,
// case-insensitively. An empty or whitespace-only query matches everything.
// Catalog order is preserved; active and inactive entries both pass, filtering
// on status is the caller's concern.
func FilterBlp(entries []BlpRate, query string) []BlpRate {
	query = strings.TrimSpace(query)
	if query == "" {
		return entries
	}
	needle := strings.ToLower(query)
	matched := make([]BlpRate, 0, len(entries))
	for _, entry := range entries {
		if strings.Contains(strings.ToLower(entry.Specification), needle) {
			matched = append(matched, entry)
		}
	}
	return matched
}

// FilterBlnp is the BLNP counterpart of FilterBlp, matching against the item
// description.
func FilterBlnp(entries []BlnpRate, query string) []BlnpRate {
	query = strings.TrimSpace(query)
	if query == "" {
		return entries
	}
	needle := strings.ToLower(query)
	matched := make([]BlnpRate, 0, len(entries))
	for _, entry := range entries {
		if strings.Contains(strings.ToLower(entry.ItemDescription), needle) {
			matched = append(matched, entry)
		}
	}
	return matched
}
