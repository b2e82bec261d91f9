package models

import "fmt"

// ContentKind names the table a rating points into.
type ContentKind string

const (
	KindMessage ContentKind = "message"
	KindReply   ContentKind = "reply"
)

func ParseContentKind(s string) (ContentKind, bool) {
	switch ContentKind(s) {
	case KindMessage:
		return KindMessage, true
	case KindReply:
		return KindReply, true
	}
	return "", false
}

// ContentRef identifies a ratable item. Build it with MessageRef or ReplyRef
// so the kind is always one of the two known values.
type ContentRef struct {
	Kind ContentKind
	ID   uint
}

func MessageRef(id uint) ContentRef { return ContentRef{Kind: KindMessage, ID: id} }
func ReplyRef(id uint) ContentRef   { return ContentRef{Kind: KindReply, ID: id} }

func (r ContentRef) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}
