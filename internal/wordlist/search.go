package wordlist

import (
	"sort"

	"github.com/nao1215/wordscraper/internal/index"
	"github.com/nao1215/wordscraper/internal/model"
)

// Search looks every target up in ix with exact, case-sensitive matching.
// Found holds the index entries whose key is a target; NotFound holds the
// remaining targets. Both are always populated, possibly empty.
func Search(ix *index.Index, targets []string) *model.SearchResult {
	result := model.NewSearchResult()

	missing := make(map[string]struct{})
	for _, target := range targets {
		if urls, ok := ix.Lookup(target); ok {
			result.Found[target] = urls
			continue
		}
		missing[target] = struct{}{}
	}

	for w := range missing {
		result.NotFound = append(result.NotFound, w)
	}
	sort.Strings(result.NotFound)

	return result
}
