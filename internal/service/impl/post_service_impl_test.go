package impl

import (
	"context"
	"errors"
	"sync"
	"testing"

	"solvibe/internal/domain"
	"solvibe/internal/dto"
	"solvibe/internal/store"

	"github.com/google/uuid"
)

type memoryPostData struct {
	mu    sync.Mutex
	posts map[uuid.UUID]*domain.Post
}

func newMemoryPostData() *memoryPostData {
	return &memoryPostData{posts: make(map[uuid.UUID]*domain.Post)}
}

func (m *memoryPostData) Create(_ context.Context, post *domain.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	cp := *post
	m.posts[post.ID] = &cp
	return nil
}

func (m *memoryPostData) GetByID(_ context.Context, id uuid.UUID) (*domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memoryPostData) ListVisible(_ context.Context, requesterID *uuid.UUID, subscribedCreatorIDs []uuid.UUID) ([]domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	subscribed := make(map[uuid.UUID]bool, len(subscribedCreatorIDs))
	for _, id := range subscribedCreatorIDs {
		subscribed[id] = true
	}
	var out []domain.Post
	for _, p := range m.posts {
		switch {
		case p.AccessLevel == domain.AccessPublic:
		case requesterID != nil && *requesterID == p.CreatorID:
		case requesterID != nil && subscribed[p.CreatorID]:
		default:
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

type postFixture struct {
	svc     *PostServiceImpl
	members *MembershipServiceImpl
	creator domain.Identity
	reader  domain.Identity
}

func newPostFixture(t *testing.T) postFixture {
	t.Helper()
	creator := domain.Identity{UserID: uuid.New(), WalletAddress: "creator-wallet", Username: "creator"}
	reader := domain.Identity{UserID: uuid.New(), WalletAddress: "reader-wallet", Username: "reader"}
	members := &MembershipServiceImpl{Store: newMemoryMembershipData(creator.UserID, reader.UserID)}
	return postFixture{
		svc:     &PostServiceImpl{Store: newMemoryPostData(), Members: members},
		members: members,
		creator: creator,
		reader:  reader,
	}
}

func (f postFixture) createPost(t *testing.T, level domain.PostAccessLevel) *domain.Post {
	t.Helper()
	post, err := f.svc.Create(context.Background(), f.creator, dto.CreatePostRequest{
		Content:     "hello from " + f.creator.Username,
		AccessLevel: level,
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

func TestCreatePostDefaultsToPublic(t *testing.T) {
	f := newPostFixture(t)
	post, err := f.svc.Create(context.Background(), f.creator, dto.CreatePostRequest{Content: "gm"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if post.AccessLevel != domain.AccessPublic {
		t.Fatalf("expected public default, got %q", post.AccessLevel)
	}
	if post.CreatorID != f.creator.UserID || post.WalletAddress != f.creator.WalletAddress {
		t.Fatalf("authorship not taken from the caller: %+v", post)
	}
}

func TestCreatePostRejectsBadInput(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, f.creator, dto.CreatePostRequest{Content: "   "}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("blank content: %v", err)
	}
	if _, err := f.svc.Create(ctx, f.creator, dto.CreatePostRequest{Content: "x", AccessLevel: "vip"}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("bogus access level: %v", err)
	}
}

func TestCanViewRuleOrder(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	public := f.createPost(t, domain.AccessPublic)
	gated := f.createPost(t, domain.AccessMembersOnly)

	cases := []struct {
		name      string
		post      *domain.Post
		requester *uuid.UUID
		allowed   bool
	}{
		{"public anonymous", public, nil, true},
		{"public stranger", public, &f.reader.UserID, true},
		{"gated anonymous", gated, nil, false},
		{"gated stranger", gated, &f.reader.UserID, false},
		{"gated creator", gated, &f.creator.UserID, true},
	}
	for _, tc := range cases {
		dec, err := f.svc.CanView(ctx, tc.post, tc.requester)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if dec.Allowed != tc.allowed {
			t.Fatalf("%s: allowed=%v want %v (%s)", tc.name, dec.Allowed, tc.allowed, dec.Reason)
		}
	}

	// Subscribing flips the gated-stranger case.
	if _, err := f.members.Subscribe(ctx, f.reader.UserID, f.creator.UserID); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	dec, err := f.svc.CanView(ctx, gated, &f.reader.UserID)
	if err != nil || !dec.Allowed {
		t.Fatalf("member should see gated post: allowed=%v err=%v", dec.Allowed, err)
	}
}

func TestGetPostMapsDenials(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	gated := f.createPost(t, domain.AccessMembersOnly)

	if _, err := f.svc.Get(ctx, uuid.New(), nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing post: %v", err)
	}
	if _, err := f.svc.Get(ctx, gated.ID, nil); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("anonymous on gated post: %v", err)
	}
	if _, err := f.svc.Get(ctx, gated.ID, &f.reader.UserID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("non-member on gated post: %v", err)
	}
	if _, err := f.svc.Get(ctx, gated.ID, &f.creator.UserID); err != nil {
		t.Fatalf("creator on own gated post: %v", err)
	}
}

func TestListVisibility(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	public := f.createPost(t, domain.AccessPublic)
	gated := f.createPost(t, domain.AccessMembersOnly)

	ids := func(posts []domain.Post) map[uuid.UUID]bool {
		out := make(map[uuid.UUID]bool, len(posts))
		for _, p := range posts {
			out[p.ID] = true
		}
		return out
	}

	// Anonymous: public only.
	posts, err := f.svc.List(ctx, nil)
	if err != nil {
		t.Fatalf("anonymous list: %v", err)
	}
	if got := ids(posts); !got[public.ID] || got[gated.ID] {
		t.Fatalf("anonymous feed wrong: %v", got)
	}

	// Non-member: still public only.
	posts, err = f.svc.List(ctx, &f.reader.UserID)
	if err != nil {
		t.Fatalf("stranger list: %v", err)
	}
	if got := ids(posts); !got[public.ID] || got[gated.ID] {
		t.Fatalf("stranger feed wrong: %v", got)
	}

	// Member: both.
	if _, err := f.members.Subscribe(ctx, f.reader.UserID, f.creator.UserID); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	posts, err = f.svc.List(ctx, &f.reader.UserID)
	if err != nil {
		t.Fatalf("member list: %v", err)
	}
	if got := ids(posts); !got[public.ID] || !got[gated.ID] {
		t.Fatalf("member feed wrong: %v", got)
	}

	// Creator: both, without any membership edge.
	posts, err = f.svc.List(ctx, &f.creator.UserID)
	if err != nil {
		t.Fatalf("creator list: %v", err)
	}
	if got := ids(posts); !got[public.ID] || !got[gated.ID] {
		t.Fatalf("creator feed wrong: %v", got)
	}
}
