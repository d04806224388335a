package agent

import "strings"

// MergeHashtags combines configured tags with generated ones. Configured
// tags keep their order and casing; generated tags are appended in
// generator order. Duplicates are dropped case-insensitively, first
// occurrence wins. Tags are trimmed and get a "#" prefix if missing.
func MergeHashtags(configured, generated []string) []string {
	merged := make([]string, 0, len(configured)+len(generated))
	seen := make(map[string]struct{}, len(configured)+len(generated))

	appendTags := func(tags []string) {
		for _, tag := range tags {
			cleaned := cleanHashtag(tag)
			if cleaned == "" {
				continue
			}
			key := strings.ToLower(cleaned)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, cleaned)
		}
	}

	appendTags(configured)
	appendTags(generated)
	return merged
}

func cleanHashtag(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" || tag == "#" {
		return ""
	}
	if !strings.HasPrefix(tag, "#") {
		tag = "#" + tag
	}
	return tag
}
