// Package swipe implements the ideaswipe domain: ideas, the per-user swipe
// feed, engagement counters and comments.
//
// Every operation takes the acting user's email explicitly; the HTTP layer
// reads it from the session placed in the context by auth.Middleware.
// Ideas, likes, view records and comments live in one SQLite or libSQL
// database handed to New.
package swipe

import (
	"bytes"
	"encoding/json"

	"github.com/hazyhaar/ideaswipe/swipe/internal/store"
)

// Re-export store types for public API.
type (
	Idea       = store.Idea
	Metrics    = store.Metrics
	ViewRecord = store.ViewRecord
	Like       = store.Like
	Comment    = store.Comment
)

// Swipe actions.
const (
	ActionLeft  = store.ActionLeft
	ActionRight = store.ActionRight
)

// IdeaInput is the payload of CreateIdea. Unset optional fields are stored
// as null, unset lists as empty lists.
type IdeaInput struct {
	Title                 string   `json:"title"`
	Description           string   `json:"description"`
	MarketSize            *string  `json:"market_size"`
	MarketPotential       *string  `json:"market_potential"`
	TechnicalRequirements []string `json:"technical_requirements"`
	FinancialRequirement  *string  `json:"financial_requirement"`
	Timeline              *string  `json:"timeline"`
	Category              *string  `json:"category"`
	Challenges            []string `json:"challenges"`
}

// OptionalString is a patch field distinguishing "absent" (Set false) from
// an explicit JSON null (Set true, Value nil).
type OptionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON marks the field as set.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// Str returns a set OptionalString holding s.
func Str(s string) OptionalString {
	return OptionalString{Set: true, Value: &s}
}

// Null returns a set OptionalString clearing the field.
func Null() OptionalString {
	return OptionalString{Set: true}
}

// OptionalList is a patch field for list values. An explicit null sets the
// empty list.
type OptionalList struct {
	Set   bool
	Value []string
}

// UnmarshalJSON marks the field as set.
func (o *OptionalList) UnmarshalJSON(data []byte) error {
	o.Set = true
	o.Value = []string{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// List returns a set OptionalList holding items.
func List(items ...string) OptionalList {
	if items == nil {
		items = []string{}
	}
	return OptionalList{Set: true, Value: items}
}

// IdeaPatch is the payload of UpdateIdea. Only set fields change; the
// identity, author, creation time and metrics of an idea are not patchable.
type IdeaPatch struct {
	Title                 OptionalString `json:"title"`
	Description           OptionalString `json:"description"`
	MarketSize            OptionalString `json:"market_size"`
	MarketPotential       OptionalString `json:"market_potential"`
	TechnicalRequirements OptionalList   `json:"technical_requirements"`
	FinancialRequirement  OptionalString `json:"financial_requirement"`
	Timeline              OptionalString `json:"timeline"`
	Category              OptionalString `json:"category"`
	Challenges            OptionalList   `json:"challenges"`
}

// SwipeResult reports the outcome of RecordSwipe. Liked is true when the
// swipe inserted a new like; Duplicate when the user had already liked the
// idea.
type SwipeResult struct {
	IdeaID    string  `json:"idea_id"`
	Action    string  `json:"action"`
	Liked     bool    `json:"liked"`
	Duplicate bool    `json:"duplicate"`
	Metrics   Metrics `json:"metrics"`
}

// ShareResult carries the public link of a shared idea.
type ShareResult struct {
	IdeaID  string  `json:"idea_id"`
	URL     string  `json:"url"`
	Metrics Metrics `json:"metrics"`
}

// LikeStatus tells a user whether they already liked an idea. LikeRows is
// the number of like records, which matches Metrics.Likes.
type LikeStatus struct {
	IdeaID   string  `json:"idea_id"`
	Liked    bool    `json:"liked"`
	LikeRows int64   `json:"like_rows"`
	Metrics  Metrics `json:"metrics"`
}

// IdeaWithComments is one entry of a user's profile.
type IdeaWithComments struct {
	*Idea
	Comments []*Comment `json:"comments"`
}

// DeleteResult counts the rows removed by DeleteIdea, per table.
type DeleteResult = store.CascadeResult
