package ai

import (
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

const (
	tokenEncoding = "cl100k_base"
	// runesPerToken approximates token usage when no encoder is available.
	runesPerToken = 4
)

var loadEncoding = sync.OnceValues(func() (*tiktoken.Tiktoken, error) {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	return tiktoken.GetEncoding(tokenEncoding)
})

// truncateTokens cuts text to at most limit tokens. The second result
// reports whether text was shortened. A non-positive limit disables the cut.
func truncateTokens(text string, limit int) (string, bool) {
	if limit <= 0 {
		return text, false
	}

	enc, err := loadEncoding()
	if err != nil {
		runes := []rune(text)
		if len(runes) <= limit*runesPerToken {
			return text, false
		}
		return string(runes[:limit*runesPerToken]), true
	}

	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= limit {
		return text, false
	}
	return enc.Decode(tokens[:limit]), true
}
