package service

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/reshetovitsme/chat-guard/internal/modules/firewall/domain"
	msgdomain "github.com/reshetovitsme/chat-guard/internal/modules/message/domain"
	policydomain "github.com/reshetovitsme/chat-guard/internal/modules/policy/domain"
	"github.com/samber/lo"
)

// compiledRule is a rule with its regexes and timezones resolved once per
// revision. A nil regex or location marks malformed data; the condition then
// never matches.
type compiledRule struct {
	*domain.Rule
	regexes   map[int]*regexp.Regexp
	locations map[int]*time.Location
}

func compile(rule *domain.Rule) *compiledRule {
	c := &compiledRule{
		Rule:      rule,
		regexes:   map[int]*regexp.Regexp{},
		locations: map[int]*time.Location{},
	}
	for i, cond := range rule.Conditions {
		switch cond.Kind {
		case domain.ConditionKindRegex:
			re, err := domain.CompileRegex(cond.Pattern, cond.Flags)
			if err != nil {
				re = nil
			}
			c.regexes[i] = re
		case domain.ConditionKindTimeRange:
			loc := time.UTC
			if cond.Timezone != "" {
				l, err := time.LoadLocation(cond.Timezone)
				if err != nil {
					l = nil
				}
				loc = l
			}
			c.locations[i] = loc
		}
	}
	return c
}

// evalContext carries the per-message inputs shared by all conditions.
type evalContext struct {
	ctx   context.Context
	facts *msgdomain.Facts
	role  func(context.Context) msgdomain.Role
}

func (r *compiledRule) matches(ec evalContext) bool {
	if len(r.Conditions) == 0 {
		return false
	}
	check := func(_ domain.Condition, i int) bool { return r.condition(ec, i) }
	if r.MatchAll {
		return everyIndexed(r.Conditions, check)
	}
	return someIndexed(r.Conditions, check)
}

func (r *compiledRule) condition(ec evalContext, i int) bool {
	c := r.Conditions[i]
	f := ec.facts

	switch c.Kind {
	case domain.ConditionKindTextContains:
		if c.CaseSensitive {
			return strings.Contains(f.Text, c.Text)
		}
		return strings.Contains(f.LowerText, strings.ToLower(c.Text))

	case domain.ConditionKindRegex:
		re := r.regexes[i]
		return re != nil && re.MatchString(f.Text)

	case domain.ConditionKindKeyword:
		contains := func(k string, _ int) bool {
			if c.CaseSensitive {
				return strings.Contains(f.Text, k)
			}
			return strings.Contains(f.LowerText, strings.ToLower(k))
		}
		if len(c.Keywords) == 0 {
			return false
		}
		if c.Match == domain.MatchAll {
			return everyIndexed(c.Keywords, contains)
		}
		return someIndexed(c.Keywords, contains)

	case domain.ConditionKindMediaType:
		return f.HasAnyMedia(c.MediaTypes)

	case domain.ConditionKindLinkDomain:
		return lo.SomeBy(f.Domains, func(host string) bool {
			return lo.SomeBy(c.Domains, func(d string) bool {
				return domainMatches(host, domain.NormalizeDomain(d), c.AllowSubdomains)
			})
		})

	case domain.ConditionKindUserRole:
		if ec.role == nil {
			return false
		}
		role := ec.role(ec.ctx)
		return role != msgdomain.RoleUnknown && lo.Contains(c.Roles, role)

	case domain.ConditionKindTimeRange:
		loc := r.locations[i]
		if loc == nil {
			return false
		}
		return policydomain.InWindow(f.SentAt.In(loc), c.StartHour*60, c.EndHour*60)

	case domain.ConditionKindMessageLength:
		n := utf8.RuneCountInString(f.Text)
		if c.MinLength > 0 && n < c.MinLength {
			return false
		}
		if c.MaxLength > 0 && n > c.MaxLength {
			return false
		}
		return c.MinLength > 0 || c.MaxLength > 0
	}
	return false
}

func domainMatches(host, d string, allowSubdomains bool) bool {
	if d == "" {
		return false
	}
	if host == d {
		return true
	}
	return allowSubdomains && strings.HasSuffix(host, "."+d)
}

func everyIndexed[T any](items []T, pred func(T, int) bool) bool {
	for i, item := range items {
		if !pred(item, i) {
			return false
		}
	}
	return true
}

func someIndexed[T any](items []T, pred func(T, int) bool) bool {
	for i, item := range items {
		if pred(item, i) {
			return true
		}
	}
	return false
}
