package earnings

import (
	"net/url"
	"regexp"
	"strings"
)

// AffiliateDomains are hosts whose links count as affiliate links in captions
var AffiliateDomains = []string{
	"mavely.app.link",
	"go.shopmy.us",
	"shopmy.us",
	"liketk.it",
	"shopltk.com",
	"amzn.to",
	"amazon.com",
}

var urlPattern = regexp.MustCompile(`https?://[^\s"'<>]+`)

// ExtractAffiliateLink returns the first URL in caption pointing at a known
// affiliate domain (or a subdomain of one), or "" if there is none.
func ExtractAffiliateLink(caption string) string {
	for _, raw := range urlPattern.FindAllString(caption, -1) {
		raw = strings.TrimRight(raw, ".,;:!?)")
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		if isAffiliateHost(u.Hostname()) {
			return raw
		}
	}
	return ""
}

func isAffiliateHost(host string) bool {
	host = strings.ToLower(host)
	for _, d := range AffiliateDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
