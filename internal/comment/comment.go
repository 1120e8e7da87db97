package comment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is the ISO-8601 layout used for Comment.Timestamp.
// Millisecond precision in UTC, e.g. "2026-10-16T09:00:00.000Z".
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Comment is a single post or reply, possibly owning nested replies.
//
// A Comment is never mutated after it has been inserted into a forest.
// Each Comment owns its Replies exclusively: there are no shared subtrees
// and no back-pointers.
type Comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Timestamp string    `json:"timestamp"`
	ParentID  *string   `json:"parentId"`
	Replies   []Comment `json:"replies"`
}

// Forest is the ordered sequence of top-level comments.
type Forest []Comment

// New builds a Comment with an empty reply list.
// An empty parentID produces a top-level comment.
func New(id, author, text string, createdAt time.Time, parentID string) Comment {
	c := Comment{
		ID:        id,
		Author:    author,
		Text:      text,
		Timestamp: FormatTimestamp(createdAt),
		Replies:   []Comment{},
	}
	if parentID != "" {
		p := parentID
		c.ParentID = &p
	}
	return c
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses an ISO-8601 timestamp as written by FormatTimestamp
// or by any RFC 3339 producer.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// Time returns the parsed creation time of the comment.
func (c Comment) Time() (time.Time, error) {
	return ParseTimestamp(c.Timestamp)
}

// IsTopLevel reports whether the comment was created without a parent.
func (c Comment) IsTopLevel() bool {
	return c.ParentID == nil
}

// Parent returns the parent id recorded at creation, or "" for top-level comments.
func (c Comment) Parent() string {
	if c.ParentID == nil {
		return ""
	}
	return *c.ParentID
}

// MarshalJSON writes replies as [] when the slice is nil so the persisted
// layout never contains "replies": null.
func (c Comment) MarshalJSON() ([]byte, error) {
	type plain Comment
	p := plain(c)
	if p.Replies == nil {
		p.Replies = []Comment{}
	}
	return marshalNoEscape(p)
}

// MarshalJSON writes a nil forest as [].
func (f Forest) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("[]"), nil
	}
	return marshalNoEscape([]Comment(f))
}

// marshalNoEscape is json.Marshal without HTML escaping. An outer encoder
// cannot undo the escaping of a Marshaler's output, so it is disabled here.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// Clone returns a deep copy of the comment and its whole reply subtree.
func (c Comment) Clone() Comment {
	out := c
	if c.ParentID != nil {
		p := *c.ParentID
		out.ParentID = &p
	}
	out.Replies = make([]Comment, len(c.Replies))
	for i := range c.Replies {
		out.Replies[i] = c.Replies[i].Clone()
	}
	return out
}

// Clone returns a deep copy of the forest. The result is never nil.
func (f Forest) Clone() Forest {
	out := make(Forest, len(f))
	for i := range f {
		out[i] = f[i].Clone()
	}
	return out
}

// Normalize replaces every nil reply slice with an empty one, in place,
// and returns a non-nil forest. Deserialized forests are normalized so that
// structural comparison with freshly built comments holds.
func Normalize(f Forest) Forest {
	if f == nil {
		return Forest{}
	}
	stack := make([]*Comment, 0, len(f))
	for i := range f {
		stack = append(stack, &f[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Replies == nil {
			n.Replies = []Comment{}
		}
		for i := range n.Replies {
			stack = append(stack, &n.Replies[i])
		}
	}
	return f
}

// Draft is an in-progress post saved so it can be resumed later.
type Draft struct {
	UserName    string `json:"userName"`
	CommentText string `json:"commentText"`
}

// IsZero reports whether the draft holds no text at all.
func (d Draft) IsZero() bool {
	return d.UserName == "" && d.CommentText == ""
}
