package oddsportal

import (
	"github.com/Larcf/footstats-data/lib/textutil"
)

// DefaultBlockPhrases mark a response as an anti-bot interstitial.
var DefaultBlockPhrases = []string{
	"access denied",
	"cloudflare",
	"security check",
	"captcha",
	"checking your browser",
}

// DetectBlock reports the first phrase found in body, case-insensitively.
func DetectBlock(body string, phrases []string) (string, bool) {
	return textutil.FindAnyFold(body, phrases)
}
