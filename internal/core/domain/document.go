package domain

import "time"

// Document is an archived item: a web page, note, or any other piece of text
// worth keeping. The record store holds the authoritative copy of every field;
// the vector index holds only (ID -> Embedding) as a best-effort projection.
type Document struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	URL       string         `json:"url,omitempty"`
	Summary   string         `json:"summary,omitempty"`
	Metadata  map[string]any `json:"metadata"`
	Tags      []string       `json:"tags"`
	Category  string         `json:"category,omitempty"`
	Embedding []float32      `json:"embedding,omitempty"`
	Version   int            `json:"version"`
	Author    string         `json:"author,omitempty"`
	Date      time.Time      `json:"date"`
}

// DocumentCreate carries the caller-supplied fields for a new document.
// ID, Version and Embedding are assigned by the archive service.
type DocumentCreate struct {
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	URL      string         `json:"url,omitempty"`
	Summary  string         `json:"summary,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Tags     []string       `json:"tags,omitempty"`
	Category string         `json:"category,omitempty"`
	Author   string         `json:"author,omitempty"`
	Date     *time.Time     `json:"date,omitempty"`
}

// DocumentUpdate is a partial update. A nil field means "leave unchanged".
// ID and Version cannot be set through an update; the store increments
// Version itself on every successful patch.
type DocumentUpdate struct {
	Title     *string        `json:"title,omitempty"`
	Content   *string        `json:"content,omitempty"`
	URL       *string        `json:"url,omitempty"`
	Summary   *string        `json:"summary,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Tags      []string       `json:"tags,omitempty"`
	Category  *string        `json:"category,omitempty"`
	Embedding []float32      `json:"embedding,omitempty"`
	Author    *string        `json:"author,omitempty"`
	Date      *time.Time     `json:"date,omitempty"`
}

// IsEmpty reports whether the update would change nothing.
func (u *DocumentUpdate) IsEmpty() bool {
	return u.Title == nil &&
		u.Content == nil &&
		u.URL == nil &&
		u.Summary == nil &&
		u.Metadata == nil &&
		u.Tags == nil &&
		u.Category == nil &&
		u.Embedding == nil &&
		u.Author == nil &&
		u.Date == nil
}

// Apply merges the update into doc. Version bookkeeping is the store's job,
// not Apply's; callers that bypass a store must bump Version themselves.
func (u *DocumentUpdate) Apply(doc *Document) {
	if u.Title != nil {
		doc.Title = *u.Title
	}
	if u.Content != nil {
		doc.Content = *u.Content
	}
	if u.URL != nil {
		doc.URL = *u.URL
	}
	if u.Summary != nil {
		doc.Summary = *u.Summary
	}
	if u.Metadata != nil {
		doc.Metadata = u.Metadata
	}
	if u.Tags != nil {
		doc.Tags = u.Tags
	}
	if u.Category != nil {
		doc.Category = *u.Category
	}
	if u.Embedding != nil {
		doc.Embedding = u.Embedding
	}
	if u.Author != nil {
		doc.Author = *u.Author
	}
	if u.Date != nil {
		doc.Date = *u.Date
	}
}
