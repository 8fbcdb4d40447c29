// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// excerptLen is the number of runes of content kept in a PostSummary.
const excerptLen = 200

// Post is a blog post. Its comments are embedded and are read and written
// together with the post as one unit.
type Post struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Slug             string    `json:"slug"`
	Content          string    `json:"content"`
	CategoryID       uuid.UUID `json:"categoryId"`
	AuthorID         uuid.UUID `json:"authorId"`
	Tags             []string  `json:"tags"`
	FeaturedImageRef *string   `json:"featuredImageRef,omitempty"`
	Comments         []Comment `json:"comments"`
	ViewCount        int64     `json:"viewCount"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Comment is an append-only remark on a post. It has no identity outside
// the post that owns it.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	AuthorID  uuid.UUID `json:"authorId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostSummary is the listing view of a post: the body is cut down to an
// excerpt and comments are reduced to a count.
type PostSummary struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Slug             string    `json:"slug"`
	Excerpt          string    `json:"excerpt"`
	CategoryID       uuid.UUID `json:"categoryId"`
	AuthorID         uuid.UUID `json:"authorId"`
	Tags             []string  `json:"tags"`
	FeaturedImageRef *string   `json:"featuredImageRef,omitempty"`
	CommentCount     int       `json:"commentCount"`
	ViewCount        int64     `json:"viewCount"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Summary returns the listing view of p.
func (p *Post) Summary() PostSummary {
	excerpt := p.Content
	if utf8.RuneCountInString(excerpt) > excerptLen {
		excerpt = string([]rune(excerpt)[:excerptLen]) + "…"
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return PostSummary{
		ID:               p.ID,
		Title:            p.Title,
		Slug:             p.Slug,
		Excerpt:          excerpt,
		CategoryID:       p.CategoryID,
		AuthorID:         p.AuthorID,
		Tags:             tags,
		FeaturedImageRef: p.FeaturedImageRef,
		CommentCount:     len(p.Comments),
		ViewCount:        p.ViewCount,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// Clone returns a deep copy of p so callers can mutate it freely.
func (p *Post) Clone() *Post {
	c := *p
	c.Tags = append(make([]string, 0, len(p.Tags)), p.Tags...)
	c.Comments = append(make([]Comment, 0, len(p.Comments)), p.Comments...)
	if p.FeaturedImageRef != nil {
		ref := *p.FeaturedImageRef
		c.FeaturedImageRef = &ref
	}
	return &c
}

// PostFilter selects a window of posts for a listing.
type PostFilter struct {
	CategoryID *uuid.UUID
	// Offset is the number of posts to skip. A negative offset selects
	// no posts; the total is still reported.
	Offset     int
	Limit      int
}

// PostPage is one page of a post listing.
type PostPage struct {
	Items []PostSummary `json:"items"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
	Total int           `json:"total"`
	Pages int           `json:"pages"`
}
