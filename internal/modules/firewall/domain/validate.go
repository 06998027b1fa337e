package domain

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	action "github.com/reshetovitsme/chat-guard/internal/modules/action/domain"
	msgdomain "github.com/reshetovitsme/chat-guard/internal/modules/message/domain"
	"github.com/reshetovitsme/chat-guard/internal/shared/errors"
	"github.com/samber/lo"
)

// ValidationError names the offending field of a rejected rule.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", errors.ErrInvalidRule, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return errors.ErrInvalidRule
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

var (
	authorableRoles = []msgdomain.Role{msgdomain.RoleNew, msgdomain.RoleRestricted, msgdomain.RoleAdmin, msgdomain.RoleOwner}
	severities      = []string{action.SeverityLow, action.SeverityMedium, action.SeverityHigh}
)

// ValidateRule decodes an authored rule and checks every field. Numbers are
// coerced from JSON floats or strings; unknown fields and out-of-range values
// are rejected with the path of the field.
func ValidateRule(raw map[string]any) (*Rule, error) {
	var rule Rule
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &rule,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			lowerEnumHook,
		),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, invalid("rule", "%v", err)
	}

	if err := rule.Validate(); err != nil {
		return nil, err
	}
	return &rule, nil
}

// lowerEnumHook lets enum fields be authored in any case.
func lowerEnumHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	s, ok := data.(string)
	if !ok {
		return data, nil
	}
	switch to {
	case reflect.TypeOf(Scope("")), reflect.TypeOf(ConditionKind("")), reflect.TypeOf(RuleActionKind("")),
		reflect.TypeOf(msgdomain.MediaKind("")), reflect.TypeOf(msgdomain.Role("")), reflect.TypeOf(action.LogLevel("")):
		return strings.ToLower(strings.TrimSpace(s)), nil
	}
	return data, nil
}

// Validate checks a decoded rule and fills defaults in place.
func (r *Rule) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return invalid("name", "is required")
	}

	if !r.Scope.IsValid() {
		return invalid("scope", "must be one of %v", ScopeNames())
	}
	if r.Scope == ScopeGroup && r.ChatID == 0 {
		return invalid("chatId", "is required for group scope")
	}
	if r.Scope == ScopeGlobal {
		r.ChatID = 0
	}

	if r.Priority < 0 {
		return invalid("priority", "must not be negative")
	}
	switch {
	case r.Severity < 0:
		return invalid("severity", "must be at least 1")
	case r.Severity == 0:
		r.Severity = 1
	}

	for i := range r.Conditions {
		if err := r.Conditions[i].validate(fmt.Sprintf("conditions[%d]", i)); err != nil {
			return err
		}
	}

	if len(r.Actions) == 0 {
		return invalid("actions", "at least one action is required")
	}
	if err := validateActions(r.Actions, "actions"); err != nil {
		return err
	}

	if r.Escalation != nil {
		if err := r.Escalation.validate("escalation"); err != nil {
			return err
		}
	}
	return nil
}

func (c *Condition) validate(path string) error {
	switch c.Kind {
	case ConditionKindTextContains:
		if c.Text == "" {
			return invalid(path+".text", "is required")
		}

	case ConditionKindRegex:
		if c.Pattern == "" {
			return invalid(path+".pattern", "is required")
		}
		if strings.Trim(c.Flags, "ims") != "" {
			return invalid(path+".flags", "only i, m and s are supported")
		}
		if _, err := CompileRegex(c.Pattern, c.Flags); err != nil {
			return invalid(path+".pattern", "%v", err)
		}

	case ConditionKindKeyword:
		c.Keywords = lo.Compact(lo.Map(c.Keywords, func(k string, _ int) string { return strings.TrimSpace(k) }))
		if len(c.Keywords) == 0 {
			return invalid(path+".keywords", "at least one keyword is required")
		}
		c.Match = strings.ToLower(c.Match)
		if c.Match == "" {
			c.Match = MatchAny
		}
		if c.Match != MatchAny && c.Match != MatchAll {
			return invalid(path+".match", "must be %q or %q", MatchAny, MatchAll)
		}

	case ConditionKindMediaType:
		if len(c.MediaTypes) == 0 {
			return invalid(path+".mediaTypes", "at least one media type is required")
		}
		for i, m := range c.MediaTypes {
			if !m.IsValid() {
				return invalid(fmt.Sprintf("%s.mediaTypes[%d]", path, i), "must be one of %v", msgdomain.MediaKindNames())
			}
		}

	case ConditionKindLinkDomain:
		c.Domains = lo.Compact(lo.Map(c.Domains, func(d string, _ int) string { return NormalizeDomain(d) }))
		if len(c.Domains) == 0 {
			return invalid(path+".domains", "at least one domain is required")
		}

	case ConditionKindUserRole:
		if len(c.Roles) == 0 {
			return invalid(path+".roles", "at least one role is required")
		}
		for i, r := range c.Roles {
			if !lo.Contains(authorableRoles, r) {
				return invalid(fmt.Sprintf("%s.roles[%d]", path, i), "must be one of %v", authorableRoles)
			}
		}

	case ConditionKindTimeRange:
		if c.StartHour < 0 || c.StartHour > 23 {
			return invalid(path+".startHour", "must be within 0-23")
		}
		if c.EndHour < 0 || c.EndHour > 23 {
			return invalid(path+".endHour", "must be within 0-23")
		}
		if c.Timezone != "" {
			if _, err := time.LoadLocation(c.Timezone); err != nil {
				return invalid(path+".timezone", "unknown timezone %q", c.Timezone)
			}
		}

	case ConditionKindMessageLength:
		if c.MinLength < 0 {
			return invalid(path+".minLength", "must not be negative")
		}
		if c.MaxLength < 0 {
			return invalid(path+".maxLength", "must not be negative")
		}
		if c.MinLength == 0 && c.MaxLength == 0 {
			return invalid(path, "minLength or maxLength is required")
		}
		if c.MaxLength > 0 && c.MaxLength < c.MinLength {
			return invalid(path+".maxLength", "must not be below minLength")
		}

	default:
		return invalid(path+".kind", "must be one of %v", ConditionKindNames())
	}
	return nil
}

func validateActions(actions []RuleAction, path string) error {
	for i := range actions {
		if err := actions[i].validate(fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func (a *RuleAction) validate(path string) error {
	switch a.Kind {
	case RuleActionKindDeleteMessage, RuleActionKindKick:
	case RuleActionKindWarn:
		a.Severity = strings.ToLower(a.Severity)
		if a.Severity == "" {
			a.Severity = action.SeverityMedium
		}
		if !lo.Contains(severities, a.Severity) {
			return invalid(path+".severity", "must be one of %v", severities)
		}
	case RuleActionKindMute:
		if a.DurationSeconds <= 0 {
			return invalid(path+".durationSeconds", "must be positive")
		}
	case RuleActionKindBan:
		if a.DurationSeconds < 0 {
			return invalid(path+".durationSeconds", "must not be negative")
		}
	case RuleActionKindLog:
		if a.Level == "" {
			a.Level = action.LogLevelInfo
		}
		if !a.Level.IsValid() {
			return invalid(path+".level", "must be one of %v", action.LogLevelNames())
		}
	default:
		return invalid(path+".kind", "must be one of %v", RuleActionKindNames())
	}
	return nil
}

func (e *Escalation) validate(path string) error {
	if len(e.Steps) == 0 {
		return invalid(path+".steps", "at least one step is required")
	}
	if e.ResetAfterSeconds < 0 {
		return invalid(path+".resetAfterSeconds", "must not be negative")
	}
	for i := range e.Steps {
		step := &e.Steps[i]
		stepPath := fmt.Sprintf("%s.steps[%d]", path, i)
		if step.Threshold <= 0 {
			return invalid(stepPath+".threshold", "must be positive")
		}
		if step.WindowSeconds <= 0 {
			return invalid(stepPath+".windowSeconds", "must be positive")
		}
		if len(step.Actions) == 0 {
			return invalid(stepPath+".actions", "at least one action is required")
		}
		if err := validateActions(step.Actions, stepPath+".actions"); err != nil {
			return err
		}
	}
	return nil
}

// CompileRegex compiles an authored pattern with its flags.
func CompileRegex(pattern, flags string) (*regexp.Regexp, error) {
	if flags != "" {
		pattern = "(?" + flags + ")" + pattern
	}
	return regexp.Compile(pattern)
}

// NormalizeDomain lowercases a domain and strips a scheme, path and "www.".
func NormalizeDomain(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	if i := strings.Index(d, "://"); i >= 0 {
		d = d[i+3:]
	}
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	d = strings.TrimSuffix(d, ".")
	return strings.TrimPrefix(d, "www.")
}
