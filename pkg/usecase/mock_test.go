package usecase_test

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hotfixer/pkg/domain/model"
	"github.com/m-mizutani/hotfixer/pkg/domain/types"
)

// fakeRepo is an in-memory repository implementing interfaces.GitHubClient.
// Refs are keyed by their short form (heads/x, tags/x).
type fakeRepo struct {
	mu sync.Mutex

	release    *model.Release
	releaseErr error
	refs       map[string]types.CommitSHA

	// merge commits that cannot be applied cleanly
	conflicting map[types.CommitSHA]bool

	getRefErr      map[string]error
	createRefErr   map[string]error
	commentErr     error
	createPRErr    error
	findPRErr      error
	openPRs        map[string]int
	nextPRNumber   int
	comments       map[int][]string
	pullRequests   []*model.DraftPullRequest
	calls          []string
	createRefHook  func(ref string)
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		release: &model.Release{TagName: "1.2.3", TargetCommitish: "main"},
		refs: map[string]types.CommitSHA{
			"tags/1.2.3": "t1",
			"heads/main": "m1",
		},
		conflicting:  map[types.CommitSHA]bool{},
		getRefErr:    map[string]error{},
		createRefErr: map[string]error{},
		openPRs:      map[string]int{},
		comments:     map[int][]string{},
		nextPRNumber: 100,
	}
}

func (r *fakeRepo) record(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *fakeRepo) callsOf(prefix string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, c := range r.calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (r *fakeRepo) GetLatestRelease(ctx context.Context, owner, repo string) (*model.Release, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("GetLatestRelease %s/%s", owner, repo)
	if r.releaseErr != nil {
		return nil, r.releaseErr
	}
	if r.release == nil {
		return nil, goerr.Wrap(types.ErrNotFound, "no release")
	}
	return r.release, nil
}

func (r *fakeRepo) GetRef(ctx context.Context, owner, repo, ref string) (types.CommitSHA, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("GetRef %s", ref)
	if err, ok := r.getRefErr[ref]; ok {
		return "", err
	}
	sha, ok := r.refs[ref]
	if !ok {
		return "", goerr.Wrap(types.ErrNotFound, "ref not found", goerr.V("ref", ref))
	}
	return sha, nil
}

func (r *fakeRepo) CreateRef(ctx context.Context, owner, repo, ref string, sha types.CommitSHA) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("CreateRef %s %s", ref, sha)
	if r.createRefHook != nil {
		r.createRefHook(ref)
	}
	if err, ok := r.createRefErr[ref]; ok {
		return err
	}
	short := strings.TrimPrefix(ref, "refs/")
	if _, ok := r.refs[short]; ok {
		return goerr.Wrap(types.ErrAlreadyExists, "reference already exists", goerr.V("ref", ref))
	}
	r.refs[short] = sha
	return nil
}

func (r *fakeRepo) CherryPick(ctx context.Context, owner, repo string, branch types.BranchName, commit types.CommitSHA) (types.CommitSHA, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("CherryPick %s %s", branch, commit)
	tip, ok := r.refs[branch.HeadRef()]
	if !ok {
		return "", goerr.Wrap(types.ErrNotFound, "branch not found", goerr.V("branch", branch))
	}
	if r.conflicting[commit] {
		return "", goerr.Wrap(types.ErrConflict, "merge conflict", goerr.V("commit", commit))
	}
	next := types.CommitSHA(fmt.Sprintf("%s+%s", tip, commit))
	r.refs[branch.HeadRef()] = next
	return next, nil
}

func (r *fakeRepo) CreateComment(ctx context.Context, owner, repo string, number int, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("CreateComment %d", number)
	if r.commentErr != nil {
		return r.commentErr
	}
	r.comments[number] = append(r.comments[number], body)
	return nil
}

func (r *fakeRepo) CreatePullRequest(ctx context.Context, owner, repo string, pr *model.DraftPullRequest) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("CreatePullRequest %s %s", pr.Head, pr.Base)
	if r.createPRErr != nil {
		return 0, r.createPRErr
	}
	key := pr.Head.String() + ":" + pr.Base.String()
	if _, ok := r.openPRs[key]; ok {
		return 0, goerr.Wrap(types.ErrAlreadyExists, "pull request already exists")
	}
	r.nextPRNumber++
	r.openPRs[key] = r.nextPRNumber
	copied := *pr
	r.pullRequests = append(r.pullRequests, &copied)
	return r.nextPRNumber, nil
}

func (r *fakeRepo) FindPullRequest(ctx context.Context, owner, repo string, head, base types.BranchName) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("FindPullRequest %s %s", head, base)
	if r.findPRErr != nil {
		return 0, r.findPRErr
	}
	number, ok := r.openPRs[head.String()+":"+base.String()]
	if !ok {
		return 0, goerr.Wrap(types.ErrNotFound, "pull request not found")
	}
	return number, nil
}

// mockNotifier records conflict notifications.
type mockNotifier struct {
	err      error
	notified []*model.ConflictBranch
}

func (m *mockNotifier) NotifyConflict(ctx context.Context, event *model.TriggerEvent, release *model.ReleaseBranch, conflict *model.ConflictBranch) error {
	m.notified = append(m.notified, conflict)
	return m.err
}

func mergedEvent() *model.TriggerEvent {
	return &model.TriggerEvent{
		Owner: "acme",
		Repo:  "widget",
		PullRequest: &model.PullRequest{
			Number:         42,
			Merged:         true,
			MergeCommitSHA: "abc123",
			BaseBranch:     "main",
		},
	}
}
