package service

import (
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	msgdomain "github.com/reshetovitsme/chat-guard/internal/modules/message/domain"
)

// patternCache memoizes compiled "/regex/" tokens. A token that fails to
// compile is stored as nil and never matches.
type patternCache struct {
	compiled *lru.Cache[string, *regexp.Regexp]
}

func newPatternCache(size int) *patternCache {
	c, err := lru.New[string, *regexp.Regexp](size)
	if err != nil {
		panic(err)
	}
	return &patternCache{compiled: c}
}

func (p *patternCache) regex(body string) *regexp.Regexp {
	if re, ok := p.compiled.Get(body); ok {
		return re
	}
	re, err := regexp.Compile("(?i)" + body)
	if err != nil {
		re = nil
	}
	p.compiled.Add(body, re)
	return re
}

// matches reports whether token matches any subject. "/body/" tokens are
// case-insensitive regular expressions, anything else is a case-insensitive
// literal substring.
func (p *patternCache) matches(token string, subjects ...string) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}

	if len(token) > 2 && strings.HasPrefix(token, "/") && strings.HasSuffix(token, "/") {
		re := p.regex(token[1 : len(token)-1])
		if re == nil {
			return false
		}
		for _, s := range subjects {
			if re.MatchString(s) {
				return true
			}
		}
		return false
	}

	needle := strings.ToLower(token)
	for _, s := range subjects {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

func (p *patternCache) matchesAny(tokens []string, subjects ...string) bool {
	for _, t := range tokens {
		if p.matches(t, subjects...) {
			return true
		}
	}
	return false
}

// linkBlocked applies the list rule for links: blocked unless whitelisted, and
// a blacklist hit wins over the whitelist.
func (p *patternCache) linkBlocked(link msgdomain.Link, blacklist, whitelist []string) bool {
	if p.matchesAny(blacklist, link.Href, link.Domain) {
		return true
	}
	return !p.matchesAny(whitelist, link.Href, link.Domain)
}
