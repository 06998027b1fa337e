//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// Scope binds a rule to every chat or to one chat
// ENUM(global,group)
type Scope string

// ConditionKind is a firewall predicate variant
// ENUM(text_contains,regex,keyword,media_type,link_domain,user_role,time_range,message_length)
type ConditionKind string

// RuleActionKind is a firewall consequence variant
// ENUM(delete_message,warn,mute,kick,ban,log)
type RuleActionKind string
