//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// MediaKind represents the kind of media attached to a message
// ENUM(sticker,photo,video,video_note,voice,audio,document,animation)
type MediaKind string

// Role is the sender's standing in a chat
// ENUM(unknown,new,member,restricted,admin,owner)
type Role string
