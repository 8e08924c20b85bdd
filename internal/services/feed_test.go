package services

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/snapgram/backend/internal/testutil"
)

func TestHomeFeedMergesFollowedProfilesByRecency(t *testing.T) {
	f := newPostsFixture(t)
	a := testutil.CreateProfile(t, f.db, "alice")
	b := testutil.CreateProfile(t, f.db, "bob")
	c := testutil.CreateProfile(t, f.db, "carol")
	d := testutil.CreateProfile(t, f.db, "dave")
	ctx := context.Background()

	graph := NewFollowGraph(f.db)
	for _, id := range []uint{b.ID, c.ID} {
		if err := graph.Follow(ctx, a.ID, id); err != nil {
			t.Fatalf("follow: %v", err)
		}
	}

	t1 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(2 * time.Hour)
	t3 := t1.Add(time.Hour)
	p1 := f.createAt(t, b.ID, t1, "p1")
	p2 := f.createAt(t, b.ID, t2, "p2")
	p3 := f.createAt(t, c.ID, t3, "p3")
	f.createAt(t, d.ID, t2.Add(time.Hour), "not followed")
	f.createAt(t, a.ID, t2.Add(time.Hour), "own post")

	feed, err := NewFeedComposer(f.db).ComposeHomeFeed(ctx, a.ID)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	want := []uint{p2.ID, p3.ID, p1.ID}
	got := postIDs(feed)
	if len(got) != len(want) {
		t.Fatalf("expected %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v got %v", want, got)
		}
	}
}

func TestHomeFeedEmptyWithoutFollows(t *testing.T) {
	f := newPostsFixture(t)
	a := testutil.CreateProfile(t, f.db, "alice")
	b := testutil.CreateProfile(t, f.db, "bob")
	f.createAt(t, b.ID, f.clock, "unseen")

	feed, err := NewFeedComposer(f.db).ComposeHomeFeed(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if feed == nil || len(feed) != 0 {
		t.Fatalf("expected empty non-nil feed, got %v", feed)
	}
}

func TestHomeFeedIsOneHop(t *testing.T) {
	f := newPostsFixture(t)
	a := testutil.CreateProfile(t, f.db, "alice")
	b := testutil.CreateProfile(t, f.db, "bob")
	c := testutil.CreateProfile(t, f.db, "carol")
	ctx := context.Background()

	graph := NewFollowGraph(f.db)
	if err := graph.Follow(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if err := graph.Follow(ctx, b.ID, c.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}
	f.createAt(t, c.ID, f.clock, "second degree")

	feed, err := NewFeedComposer(f.db).ComposeHomeFeed(ctx, a.ID)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if len(feed) != 0 {
		t.Fatalf("expected no second-degree posts, got %v", postIDs(feed))
	}
}

func TestHomeFeedKeepsInsertionOrderOnTies(t *testing.T) {
	f := newPostsFixture(t)
	a := testutil.CreateProfile(t, f.db, "alice")
	b := testutil.CreateProfile(t, f.db, "bob")
	c := testutil.CreateProfile(t, f.db, "carol")
	ctx := context.Background()

	graph := NewFollowGraph(f.db)
	for _, id := range []uint{b.ID, c.ID} {
		if err := graph.Follow(ctx, a.ID, id); err != nil {
			t.Fatalf("follow: %v", err)
		}
	}

	first := f.createAt(t, b.ID, f.clock, "first")
	second := f.createAt(t, c.ID, f.clock, "second")
	third := f.createAt(t, b.ID, f.clock, "third")

	feed, err := NewFeedComposer(f.db).ComposeHomeFeed(ctx, a.ID)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	got := postIDs(feed)
	want := []uint{first.ID, second.ID, third.ID}
	if len(got) != len(want) {
		t.Fatalf("expected %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v got %v", want, got)
		}
	}
}
