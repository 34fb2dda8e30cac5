// Package git keeps a Git history of workspace snapshots using go-git.
package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// RemoteName is the remote Push and Pull talk to.
const RemoteName = "origin"

// Status represents Git state following a commit attempt.
type Status struct {
	Committed bool
	Pending   bool
	Hash      string
}

// Repo describes the operations needed by the daemon.
type Repo interface {
	Init(ctx context.Context) error
	Commit(ctx context.Context, message string, files []string) (Status, error)
	Push(ctx context.Context) error
	Pull(ctx context.Context) error
}

// Options configures a FilesystemRepo.
type Options struct {
	Branch    string
	Author    string
	Email     string
	RemoteURL string
}

// FilesystemRepo is a non-bare repository rooted at Path.
type FilesystemRepo struct {
	Path string
	opts Options
	repo *gogit.Repository
	now  func() time.Time
}

// New returns a repo handle for path; call Init before use.
func New(path string, opts Options) *FilesystemRepo {
	if opts.Branch == "" {
		opts.Branch = "main"
	}
	return &FilesystemRepo{Path: path, opts: opts, now: time.Now}
}

// Init opens the repository at Path, creating it on first use, and points
// the origin remote at RemoteURL when one is configured.
func (r *FilesystemRepo) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	repo, err := gogit.PlainOpen(r.Path)
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		repo, err = gogit.PlainInitWithOptions(r.Path, &gogit.PlainInitOptions{
			InitOptions: gogit.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName(r.opts.Branch)},
		})
	}
	if err != nil {
		return fmt.Errorf("open repo %s: %w", r.Path, err)
	}
	r.repo = repo
	if r.opts.RemoteURL == "" {
		return nil
	}
	remote, err := repo.Remote(RemoteName)
	switch {
	case errors.Is(err, gogit.ErrRemoteNotFound):
		_, err = repo.CreateRemote(&gitconfig.RemoteConfig{Name: RemoteName, URLs: []string{r.opts.RemoteURL}})
		return err
	case err != nil:
		return err
	}
	if urls := remote.Config().URLs; len(urls) == 1 && urls[0] == r.opts.RemoteURL {
		return nil
	}
	if err := repo.DeleteRemote(RemoteName); err != nil {
		return err
	}
	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{Name: RemoteName, URLs: []string{r.opts.RemoteURL}})
	return err
}

// Commit stages files (absolute or relative to Path) and records a commit.
// Nothing is committed when staging leaves the index unchanged; untracked
// files outside files are ignored.
func (r *FilesystemRepo) Commit(ctx context.Context, message string, files []string) (Status, error) {
	if err := ctx.Err(); err != nil {
		return Status{}, err
	}
	if r.repo == nil {
		return Status{}, errors.New("repo not initialised")
	}
	wt, err := r.repo.Worktree()
	if err != nil {
		return Status{}, err
	}
	for _, file := range files {
		rel, err := r.relative(file)
		if err != nil {
			return Status{}, err
		}
		if _, err := wt.Add(rel); err != nil {
			return Status{Pending: true}, fmt.Errorf("stage %s: %w", rel, err)
		}
	}
	status, err := wt.Status()
	if err != nil {
		return Status{Pending: true}, err
	}
	if !hasStaged(status) {
		return Status{}, nil
	}
	hash, err := wt.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{Name: r.opts.Author, Email: r.opts.Email, When: r.now()},
	})
	if err != nil {
		return Status{Pending: true}, fmt.Errorf("commit: %w", err)
	}
	return Status{Committed: true, Hash: hash.String()}, nil
}

// Push pushes the configured branch to origin.
func (r *FilesystemRepo) Push(ctx context.Context) error {
	if r.repo == nil {
		return errors.New("repo not initialised")
	}
	ref := plumbing.NewBranchReferenceName(r.opts.Branch)
	err := r.repo.PushContext(ctx, &gogit.PushOptions{
		RemoteName: RemoteName,
		RefSpecs:   []gitconfig.RefSpec{gitconfig.RefSpec(ref + ":" + ref)},
	})
	if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return nil
	}
	return err
}

// Pull fetches origin and fast-forwards the configured branch.
func (r *FilesystemRepo) Pull(ctx context.Context) error {
	if r.repo == nil {
		return errors.New("repo not initialised")
	}
	wt, err := r.repo.Worktree()
	if err != nil {
		return err
	}
	err = wt.PullContext(ctx, &gogit.PullOptions{
		RemoteName:    RemoteName,
		ReferenceName: plumbing.NewBranchReferenceName(r.opts.Branch),
		SingleBranch:  true,
	})
	if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return nil
	}
	return err
}

func hasStaged(status gogit.Status) bool {
	for _, file := range status {
		if file.Staging != gogit.Unmodified && file.Staging != gogit.Untracked {
			return true
		}
	}
	return false
}

func (r *FilesystemRepo) relative(file string) (string, error) {
	if !filepath.IsAbs(file) {
		return filepath.ToSlash(file), nil
	}
	root, err := filepath.Abs(r.Path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
