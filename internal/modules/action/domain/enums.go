//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// ActionKind is the closed set of intents the evaluators can emit
// ENUM(delete_message,warn_member,restrict_member,kick_member,ban_member,send_message,record_moderation,record_rule_audit,log,noop)
type ActionKind string

// LogLevel of a log intent
// ENUM(debug,info,warn,error)
type LogLevel string
