package model

import "time"

// Rating bounds for top-level comments.
const (
	MinRating = 1
	MaxRating = 5
)

// Comment belongs to exactly one spot and is authored by one user.
//
// Comments form a two-level tree: a top-level comment has no ParentID and
// MUST carry a rating; a reply references a top-level comment's ID as its
// parent and NEVER carries a rating (any supplied rating is discarded at
// write time). Rating is *int so "no rating" is representable and replies
// serialize without the field.
//
// Edited is set the first time the text is changed and never cleared.
type Comment struct {
	ID        string    `json:"id"                 db:"id"`
	SpotID    string    `json:"spotId"             db:"spot_id"`
	UserID    string    `json:"userId"             db:"user_id"`
	User      *User     `json:"user,omitempty"`
	Text      string    `json:"text"               db:"text"`
	Rating    *int      `json:"rating,omitempty"   db:"rating"`
	ParentID  *string   `json:"parentId,omitempty" db:"parent_id"`
	Edited    bool      `json:"edited"             db:"edited"`
	CreatedAt time.Time `json:"createdAt"          db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt"          db:"updated_at"`
}

// IsReply reports whether the comment is a reply to another comment.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil && *c.ParentID != ""
}
