package models

import (
	"testing"
	"time"
)

func TestPostBeforeCreateDefaultsPubDate(t *testing.T) {
	p := Post{Title: "t", Text: "x"}
	before := time.Now()
	if err := p.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate: %v", err)
	}
	if p.PubDate.Before(before) {
		t.Fatalf("PubDate = %v, want >= %v", p.PubDate, before)
	}
}

func TestPostBeforeCreateKeepsScheduledPubDate(t *testing.T) {
	future := time.Now().Add(48 * time.Hour)
	p := Post{Title: "t", Text: "x", PubDate: future}
	if err := p.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate: %v", err)
	}
	if !p.PubDate.Equal(future) {
		t.Fatalf("PubDate = %v, want scheduled %v", p.PubDate, future)
	}
}

func TestUserBeforeCreateSetsTimestamps(t *testing.T) {
	u := User{Username: "alice"}
	if err := u.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate: %v", err)
	}
	if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
		t.Fatal("timestamps should be set on create")
	}
}

func TestUserBeforeUpdateRefreshesUpdatedAt(t *testing.T) {
	old := time.Now().Add(-time.Hour)
	u := User{Username: "alice", CreatedAt: old, UpdatedAt: old}
	if err := u.BeforeUpdate(nil); err != nil {
		t.Fatalf("BeforeUpdate: %v", err)
	}
	if !u.UpdatedAt.After(old) {
		t.Fatalf("UpdatedAt = %v, want after %v", u.UpdatedAt, old)
	}
	if !u.CreatedAt.Equal(old) {
		t.Fatalf("CreatedAt changed to %v", u.CreatedAt)
	}
}
