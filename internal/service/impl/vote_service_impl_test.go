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

// memoryVoteData is a transactional in-memory double for the vote ledger:
// WithTx snapshots the maps and restores them when the callback fails, the
// same all-or-nothing behavior the real store gets from the database.
type memoryVoteData struct {
	mu    sync.Mutex
	posts map[uuid.UUID]*domain.Post
	votes map[uuid.UUID]*domain.Vote

	// createVoteErr, when set, fails the next CreateVote once.
	createVoteErr error
	// afterRollback, when set, runs once after a failed transaction is rolled
	// back; it stands in for a concurrent writer whose commit survives.
	afterRollback func(m *memoryVoteData)
}

func newMemoryVoteData() *memoryVoteData {
	return &memoryVoteData{
		posts: make(map[uuid.UUID]*domain.Post),
		votes: make(map[uuid.UUID]*domain.Vote),
	}
}

func (m *memoryVoteData) addPost(level domain.PostAccessLevel) *domain.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &domain.Post{ID: uuid.New(), CreatorID: uuid.New(), Content: "x", AccessLevel: level}
	m.posts[p.ID] = p
	return p
}

func (m *memoryVoteData) WithTx(_ context.Context, fn func(tx voteTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	postsBefore := make(map[uuid.UUID]*domain.Post, len(m.posts))
	for k, v := range m.posts {
		cp := *v
		postsBefore[k] = &cp
	}
	votesBefore := make(map[uuid.UUID]*domain.Vote, len(m.votes))
	for k, v := range m.votes {
		cp := *v
		votesBefore[k] = &cp
	}

	if err := fn(memoryVoteTx{data: m}); err != nil {
		m.posts = postsBefore
		m.votes = votesBefore
		if hook := m.afterRollback; hook != nil {
			m.afterRollback = nil
			hook(m)
		}
		return err
	}
	return nil
}

func (m *memoryVoteData) Recount(_ context.Context, postID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[postID]
	if !ok {
		return store.ErrRecordNotFound
	}
	up, down := 0, 0
	for _, v := range m.votes {
		if v.PostID != postID {
			continue
		}
		if v.Type == domain.VoteUp {
			up++
		} else {
			down++
		}
	}
	p.UpvotesCount, p.DownvotesCount = up, down
	return nil
}

func (m *memoryVoteData) ListByPost(_ context.Context, postID uuid.UUID) ([]domain.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Vote
	for _, v := range m.votes {
		if v.PostID == postID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (m *memoryVoteData) ListByVoter(_ context.Context, voterID uuid.UUID) ([]domain.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Vote
	for _, v := range m.votes {
		if v.VoterID == voterID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (m *memoryVoteData) PostExists(_ context.Context, postID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.posts[postID]
	return ok, nil
}

// memoryVoteTx operates on the owning data directly; WithTx already holds the
// lock and handles rollback.
type memoryVoteTx struct {
	data *memoryVoteData
}

func (t memoryVoteTx) GetPost(_ context.Context, id uuid.UUID) (*domain.Post, error) {
	p, ok := t.data.posts[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (t memoryVoteTx) GetVote(_ context.Context, postID, voterID uuid.UUID) (*domain.Vote, error) {
	for _, v := range t.data.votes {
		if v.PostID == postID && v.VoterID == voterID {
			cp := *v
			return &cp, nil
		}
	}
	return nil, store.ErrRecordNotFound
}

func (t memoryVoteTx) CreateVote(_ context.Context, vote *domain.Vote) error {
	if err := t.data.createVoteErr; err != nil {
		t.data.createVoteErr = nil
		return err
	}
	for _, v := range t.data.votes {
		if v.PostID == vote.PostID && v.VoterID == vote.VoterID {
			return store.ErrDuplicateKey
		}
	}
	if vote.ID == uuid.Nil {
		vote.ID = uuid.New()
	}
	cp := *vote
	t.data.votes[vote.ID] = &cp
	return nil
}

func (t memoryVoteTx) UpdateVoteType(_ context.Context, voteID uuid.UUID, typ domain.VoteType) error {
	v, ok := t.data.votes[voteID]
	if !ok {
		return store.ErrRecordNotFound
	}
	v.Type = typ
	return nil
}

func (t memoryVoteTx) DeleteVote(_ context.Context, voteID uuid.UUID) error {
	if _, ok := t.data.votes[voteID]; !ok {
		return store.ErrRecordNotFound
	}
	delete(t.data.votes, voteID)
	return nil
}

func (t memoryVoteTx) AddVoteCount(_ context.Context, postID uuid.UUID, typ domain.VoteType) error {
	p, ok := t.data.posts[postID]
	if !ok {
		return store.ErrRecordNotFound
	}
	if typ == domain.VoteUp {
		p.UpvotesCount++
	} else {
		p.DownvotesCount++
	}
	return nil
}

func (t memoryVoteTx) SubVoteCount(_ context.Context, postID uuid.UUID, typ domain.VoteType) error {
	p, ok := t.data.posts[postID]
	if !ok {
		return store.ErrRecordNotFound
	}
	if typ == domain.VoteUp {
		if p.UpvotesCount == 0 {
			return domain.ErrCounterUnderflow
		}
		p.UpvotesCount--
		return nil
	}
	if p.DownvotesCount == 0 {
		return domain.ErrCounterUnderflow
	}
	p.DownvotesCount--
	return nil
}

func (t memoryVoteTx) Counters(_ context.Context, postID uuid.UUID) (int, int, error) {
	p, ok := t.data.posts[postID]
	if !ok {
		return 0, 0, store.ErrRecordNotFound
	}
	return p.UpvotesCount, p.DownvotesCount, nil
}

func mustCast(t *testing.T, svc *VoteServiceImpl, postID, voterID uuid.UUID, typ domain.VoteType) *dto.CastVoteResponse {
	t.Helper()
	resp, err := svc.Cast(context.Background(), postID, voterID, typ)
	if err != nil {
		t.Fatalf("cast %s: %v", typ, err)
	}
	return resp
}

func TestCastRejectsBadType(t *testing.T) {
	svc := &VoteServiceImpl{Store: newMemoryVoteData()}
	if _, err := svc.Cast(context.Background(), uuid.New(), uuid.New(), "sideways"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestCastMissingPost(t *testing.T) {
	svc := &VoteServiceImpl{Store: newMemoryVoteData()}
	if _, err := svc.Cast(context.Background(), uuid.New(), uuid.New(), domain.VoteUp); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCastToggleLaw(t *testing.T) {
	data := newMemoryVoteData()
	svc := &VoteServiceImpl{Store: data}
	post := data.addPost(domain.AccessPublic)
	voter := uuid.New()

	resp := mustCast(t, svc, post.ID, voter, domain.VoteUp)
	if resp.Status != domain.VoteStatusUp || resp.UpvotesCount != 1 || resp.DownvotesCount != 0 {
		t.Fatalf("first upvote: %+v", resp)
	}

	// Same vote again removes it.
	resp = mustCast(t, svc, post.ID, voter, domain.VoteUp)
	if resp.Status != domain.VoteStatusNone || resp.UpvotesCount != 0 || resp.DownvotesCount != 0 {
		t.Fatalf("toggle off: %+v", resp)
	}

	if votes, _ := data.ListByPost(context.Background(), post.ID); len(votes) != 0 {
		t.Fatalf("ledger should be empty after toggle, has %d rows", len(votes))
	}
}

func TestCastSwitchMovesOneUnit(t *testing.T) {
	data := newMemoryVoteData()
	svc := &VoteServiceImpl{Store: data}
	post := data.addPost(domain.AccessPublic)
	voter := uuid.New()

	mustCast(t, svc, post.ID, voter, domain.VoteUp)
	resp := mustCast(t, svc, post.ID, voter, domain.VoteDown)
	if resp.Status != domain.VoteStatusDown || resp.UpvotesCount != 0 || resp.DownvotesCount != 1 {
		t.Fatalf("switch up->down: %+v", resp)
	}

	// Still exactly one ledger row for the pair.
	votes, _ := data.ListByPost(context.Background(), post.ID)
	if len(votes) != 1 || votes[0].Type != domain.VoteDown {
		t.Fatalf("ledger after switch: %+v", votes)
	}
}

func TestCastTwoVotersIndependent(t *testing.T) {
	data := newMemoryVoteData()
	svc := &VoteServiceImpl{Store: data}
	post := data.addPost(domain.AccessPublic)
	u1, u2 := uuid.New(), uuid.New()

	mustCast(t, svc, post.ID, u1, domain.VoteUp)
	resp := mustCast(t, svc, post.ID, u2, domain.VoteDown)
	if resp.UpvotesCount != 1 || resp.DownvotesCount != 1 {
		t.Fatalf("after u1 up + u2 down: %+v", resp)
	}

	// u1 switches; u2's vote is untouched.
	resp = mustCast(t, svc, post.ID, u1, domain.VoteDown)
	if resp.UpvotesCount != 0 || resp.DownvotesCount != 2 {
		t.Fatalf("after u1 switch: %+v", resp)
	}

	// u2 toggles off.
	resp = mustCast(t, svc, post.ID, u2, domain.VoteDown)
	if resp.UpvotesCount != 0 || resp.DownvotesCount != 1 {
		t.Fatalf("after u2 toggle off: %+v", resp)
	}
}

func TestCastCountersMatchLedger(t *testing.T) {
	data := newMemoryVoteData()
	svc := &VoteServiceImpl{Store: data}
	post := data.addPost(domain.AccessPublic)
	ctx := context.Background()

	voters := make([]uuid.UUID, 7)
	for i := range voters {
		voters[i] = uuid.New()
	}
	seq := []domain.VoteType{
		domain.VoteUp, domain.VoteDown, domain.VoteUp, domain.VoteUp,
		domain.VoteDown, domain.VoteUp, domain.VoteDown,
	}
	for i, typ := range seq {
		mustCast(t, svc, post.ID, voters[i], typ)
	}
	// A few toggles and switches on top.
	mustCast(t, svc, post.ID, voters[0], domain.VoteUp)   // remove
	mustCast(t, svc, post.ID, voters[1], domain.VoteUp)   // switch
	mustCast(t, svc, post.ID, voters[2], domain.VoteDown) // switch

	votes, _ := data.ListByPost(ctx, post.ID)
	up, down := 0, 0
	for _, v := range votes {
		if v.Type == domain.VoteUp {
			up++
		} else {
			down++
		}
	}
	if post := data.posts[post.ID]; post.UpvotesCount != up || post.DownvotesCount != down {
		t.Fatalf("counters (%d,%d) diverged from ledger (%d,%d)",
			post.UpvotesCount, post.DownvotesCount, up, down)
	}
}

func TestCastRetriesAfterDuplicateKey(t *testing.T) {
	data := newMemoryVoteData()
	svc := &VoteServiceImpl{Store: data}
	post := data.addPost(domain.AccessPublic)
	voter := uuid.New()

	// First attempt: the insert hits the unique index because a concurrent
	// writer won the race; that writer's committed row appears once the loser
	// rolls back.
	data.createVoteErr = store.ErrDuplicateKey
	data.afterRollback = func(m *memoryVoteData) {
		v := &domain.Vote{ID: uuid.New(), PostID: post.ID, VoterID: voter, Type: domain.VoteUp}
		m.votes[v.ID] = v
		m.posts[post.ID].UpvotesCount++
	}

	// Same type as the winner's row: the retry resolves it as a toggle off.
	resp := mustCast(t, svc, post.ID, voter, domain.VoteUp)
	if resp.Status != domain.VoteStatusNone || resp.UpvotesCount != 0 {
		t.Fatalf("retry should toggle the winner's vote off: %+v", resp)
	}
	if votes, _ := data.ListByPost(context.Background(), post.ID); len(votes) != 0 {
		t.Fatalf("ledger should be empty after the toggle, has %d rows", len(votes))
	}
}

func TestCastUnderflowRollsBackAndRecounts(t *testing.T) {
	data := newMemoryVoteData()
	svc := &VoteServiceImpl{Store: data}
	post := data.addPost(domain.AccessPublic)
	voter := uuid.New()
	ctx := context.Background()

	mustCast(t, svc, post.ID, voter, domain.VoteUp)

	// Corrupt the aggregate so the un-vote decrement has nothing to take.
	data.mu.Lock()
	data.posts[post.ID].UpvotesCount = 0
	data.mu.Unlock()

	_, err := svc.Cast(ctx, post.ID, voter, domain.VoteUp)
	if !errors.Is(err, domain.ErrCounterUnderflow) {
		t.Fatalf("expected counter underflow, got %v", err)
	}

	// The failed transaction rolled back the row delete, and the recount
	// reconciled the aggregate with the surviving row.
	votes, _ := data.ListByPost(ctx, post.ID)
	if len(votes) != 1 {
		t.Fatalf("vote row should survive the rollback, ledger has %d rows", len(votes))
	}
	data.mu.Lock()
	up := data.posts[post.ID].UpvotesCount
	data.mu.Unlock()
	if up != 1 {
		t.Fatalf("recount should restore the counter to 1, got %d", up)
	}
}

func TestForPostMissing(t *testing.T) {
	svc := &VoteServiceImpl{Store: newMemoryVoteData()}
	if _, err := svc.ForPost(context.Background(), uuid.New()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestByVoterLists(t *testing.T) {
	data := newMemoryVoteData()
	svc := &VoteServiceImpl{Store: data}
	p1 := data.addPost(domain.AccessPublic)
	p2 := data.addPost(domain.AccessPublic)
	voter := uuid.New()

	mustCast(t, svc, p1.ID, voter, domain.VoteUp)
	mustCast(t, svc, p2.ID, voter, domain.VoteDown)
	mustCast(t, svc, p1.ID, uuid.New(), domain.VoteUp)

	votes, err := svc.ByVoter(context.Background(), voter)
	if err != nil {
		t.Fatalf("list by voter: %v", err)
	}
	if len(votes) != 2 {
		t.Fatalf("expected 2 votes for voter, got %d", len(votes))
	}
}
