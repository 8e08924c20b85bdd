package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/anonto42/snapgram/backend/internal/storage"
	"github.com/anonto42/snapgram/backend/internal/testutil"
	"gorm.io/gorm"
)

type postsFixture struct {
	db    *gorm.DB
	blobs *testutil.MemoryBlobStore
	posts *Posts
	clock time.Time
}

func newPostsFixture(t *testing.T) *postsFixture {
	db := testutil.NewTestDB(t)
	blobs := testutil.NewMemoryBlobStore()
	images := storage.NewImages(blobs, 1080)
	f := &postsFixture{
		db:    db,
		blobs: blobs,
		posts: NewPosts(db, images),
		clock: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.clock }
	images.SetClock(clock)
	f.posts.SetClock(clock)
	return f
}

func (f *postsFixture) createAt(t *testing.T, profileID uint, at time.Time, desc string) *models.Post {
	t.Helper()
	f.clock = at
	post, err := f.posts.CreatePost(context.Background(), profileID, "photo.png", bytes.NewReader(testutil.PNG(t, 8, 8)), &desc)
	if err != nil {
		t.Fatalf("create post %q: %v", desc, err)
	}
	return post
}

func TestCreatePostStoresImage(t *testing.T) {
	f := newPostsFixture(t)
	a := testutil.CreateProfile(t, f.db, "alice")

	post := f.createAt(t, a.ID, f.clock, "hello")
	if post.ID == 0 || post.ProfileID != a.ID {
		t.Fatalf("unexpected post %+v", post)
	}
	if !strings.HasPrefix(post.Image, "20240301-") || !strings.HasSuffix(post.Image, ".png") {
		t.Fatalf("unexpected image key %q", post.Image)
	}
	if f.blobs.Len() != 1 {
		t.Fatalf("expected 1 stored blob, got %d", f.blobs.Len())
	}
	if post.Profile == nil || post.Profile.Username() != "alice" {
		t.Fatalf("expected author to be loaded")
	}
	if !post.CreatedAt.Equal(f.clock) {
		t.Fatalf("expected created_at %v got %v", f.clock, post.CreatedAt)
	}
}

func TestCreatePostRejectsNonImage(t *testing.T) {
	f := newPostsFixture(t)
	a := testutil.CreateProfile(t, f.db, "alice")

	_, err := f.posts.CreatePost(context.Background(), a.ID, "notes.txt", strings.NewReader("not an image"), nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.blobs.Len() != 0 {
		t.Fatalf("expected no blobs, got %d", f.blobs.Len())
	}
}

func TestCreatePostRemovesImageWhenInsertFails(t *testing.T) {
	f := newPostsFixture(t)

	// No such profile: the foreign key rejects the row.
	_, err := f.posts.CreatePost(context.Background(), 777, "photo.png", bytes.NewReader(testutil.PNG(t, 4, 4)), nil)
	if err == nil {
		t.Fatalf("expected insert failure")
	}
	if f.blobs.Len() != 0 {
		t.Fatalf("expected orphaned image to be removed, %d left", f.blobs.Len())
	}
}

func TestToggleLikeIsInvolution(t *testing.T) {
	f := newPostsFixture(t)
	a := testutil.CreateProfile(t, f.db, "alice")
	b := testutil.CreateProfile(t, f.db, "bob")
	post := f.createAt(t, b.ID, f.clock, "p")
	ctx := context.Background()

	res, err := f.posts.ToggleLike(ctx, a.ID, post.ID)
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if !res.Liked || res.LikeCount != 1 {
		t.Fatalf("expected liked with count 1, got %+v", res)
	}

	res, err = f.posts.ToggleLike(ctx, a.ID, post.ID)
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if res.Liked || res.LikeCount != 0 {
		t.Fatalf("expected unliked with count 0, got %+v", res)
	}

	var edges int64
	f.db.Model(&models.Like{}).Count(&edges)
	if edges != 0 {
		t.Fatalf("expected no like edges, got %d", edges)
	}
}

func TestToggleLikeRaceKeepsOneEdge(t *testing.T) {
	f := newPostsFixture(t)
	a := testutil.CreateProfile(t, f.db, "alice")
	b := testutil.CreateProfile(t, f.db, "bob")
	post := f.createAt(t, b.ID, f.clock, "p")
	ctx := context.Background()

	if _, err := f.posts.ToggleLike(ctx, a.ID, post.ID); err != nil {
		t.Fatalf("like: %v", err)
	}

	// The delete misses the committed edge, as it would when a concurrent
	// toggle created it after this one looked. The insert then collides.
	stale := true
	if err := f.db.Callback().Delete().Before("gorm:delete").Register("test:stale_like_delete", matchNothing("likes", &stale)); err != nil {
		t.Fatalf("register callback: %v", err)
	}
	res, err := f.posts.ToggleLike(ctx, a.ID, post.ID)
	stale = false
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !res.Liked || res.LikeCount != 1 {
		t.Fatalf("expected liked with count 1, got %+v", res)
	}

	var edges int64
	f.db.Model(&models.Like{}).Count(&edges)
	if edges != 1 {
		t.Fatalf("expected exactly one like edge, got %d", edges)
	}
}

func TestToggleLikeMissingPost(t *testing.T) {
	f := newPostsFixture(t)
	a := testutil.CreateProfile(t, f.db, "alice")

	if _, err := f.posts.ToggleLike(context.Background(), a.ID, 31337); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLikeCountAndLikedPosts(t *testing.T) {
	f := newPostsFixture(t)
	a := testutil.CreateProfile(t, f.db, "alice")
	b := testutil.CreateProfile(t, f.db, "bob")
	c := testutil.CreateProfile(t, f.db, "carol")
	p1 := f.createAt(t, c.ID, f.clock, "one")
	p2 := f.createAt(t, c.ID, f.clock.Add(time.Minute), "two")
	ctx := context.Background()

	for _, liker := range []uint{a.ID, b.ID} {
		if _, err := f.posts.ToggleLike(ctx, liker, p1.ID); err != nil {
			t.Fatalf("like: %v", err)
		}
	}
	if _, err := f.posts.ToggleLike(ctx, a.ID, p2.ID); err != nil {
		t.Fatalf("like: %v", err)
	}

	got, err := f.posts.GetPost(ctx, p1.ID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if got.LikeCount != 2 {
		t.Fatalf("expected like_count 2, got %d", got.LikeCount)
	}

	liked, err := f.posts.ListLikedPosts(ctx, a.ID)
	if err != nil {
		t.Fatalf("liked posts: %v", err)
	}
	if len(liked) != 2 {
		t.Fatalf("expected 2 liked posts, got %d", len(liked))
	}

	marks, err := f.posts.LikedBy(ctx, b.ID, []models.Post{*p1, *p2})
	if err != nil {
		t.Fatalf("liked by: %v", err)
	}
	if !marks[p1.ID] || marks[p2.ID] {
		t.Fatalf("unexpected liked marks %v", marks)
	}
}

func TestUpdateAndDeleteAreOwnerOnly(t *testing.T) {
	f := newPostsFixture(t)
	owner := testutil.CreateProfile(t, f.db, "owner")
	other := testutil.CreateProfile(t, f.db, "other")
	post := f.createAt(t, owner.ID, f.clock, "before")
	ctx := context.Background()

	after := "after"
	if _, err := f.posts.UpdatePost(ctx, other.ID, post.ID, &after); !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("expected invalid operation for non-owner update, got %v", err)
	}
	updated, err := f.posts.UpdatePost(ctx, owner.ID, post.ID, &after)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Description == nil || *updated.Description != "after" {
		t.Fatalf("description not updated: %+v", updated.Description)
	}
	kept, err := f.posts.UpdatePost(ctx, owner.ID, post.ID, nil)
	if err != nil {
		t.Fatalf("update without description: %v", err)
	}
	if kept.Description == nil || *kept.Description != "after" {
		t.Fatalf("absent description should be left alone, got %+v", kept.Description)
	}

	if _, err := f.posts.ToggleLike(ctx, other.ID, post.ID); err != nil {
		t.Fatalf("like: %v", err)
	}
	if err := f.posts.DeletePost(ctx, other.ID, post.ID); !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("expected invalid operation for non-owner delete, got %v", err)
	}
	if err := f.posts.DeletePost(ctx, owner.ID, post.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.posts.GetPost(ctx, post.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted post to be gone, got %v", err)
	}

	var likes int64
	f.db.Model(&models.Like{}).Count(&likes)
	if likes != 0 {
		t.Fatalf("expected likes to cascade, %d left", likes)
	}
	if f.blobs.Len() != 0 {
		t.Fatalf("expected image removed, %d left", f.blobs.Len())
	}
}

func TestListPosts(t *testing.T) {
	f := newPostsFixture(t)
	a := testutil.CreateProfile(t, f.db, "alice")
	older := f.createAt(t, a.ID, f.clock, "older")
	newer := f.createAt(t, a.ID, f.clock.Add(time.Hour), "newer")

	posts, err := f.posts.ListPosts(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 2 || posts[0].ID != newer.ID || posts[1].ID != older.ID {
		t.Fatalf("expected newest first, got %v", postIDs(posts))
	}

	if _, err := f.posts.ListPosts(context.Background(), 404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func postIDs(posts []models.Post) []uint {
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}
