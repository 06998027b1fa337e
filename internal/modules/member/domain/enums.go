//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// Status is a chat member's platform status
// ENUM(creator,administrator,member,restricted,left,kicked)
type Status string
