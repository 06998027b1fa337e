//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// SettingsGroup names one independently cached slice of chat policy
// ENUM(ban_rules,general,silence,limits,capabilities)
type SettingsGroup string

// Capability is a permission the bot needs to carry out an action kind
// ENUM(delete,restrict,send)
type Capability string
