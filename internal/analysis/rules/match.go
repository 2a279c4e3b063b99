package rules

import "strings"

// containsWord reports whether kw occurs in text delimited by non
// alphanumeric characters or the text edges. Both arguments are lowercase.
func containsWord(text, kw string) bool {
	if kw == "" {
		return false
	}

	for start := 0; start < len(text); {
		i := strings.Index(text[start:], kw)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(kw)

		if (i == 0 || !isWordByte(text[i-1])) && (end == len(text) || !isWordByte(text[end])) {
			return true
		}
		start = i + 1
	}

	return false
}

func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// hits returns the entries of list found in text, in list order.
func hits(text string, list []string) []string {
	found := make([]string, 0, len(list))
	for _, kw := range list {
		if containsWord(text, kw) {
			found = append(found, kw)
		}
	}
	return found
}

// union concatenates the lists keeping the first occurrence of every entry.
func union(lists ...[]string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, list := range lists {
		for _, item := range list {
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}
