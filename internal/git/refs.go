package git

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"stagesync.dev/stagesync/internal/index"
)

// RefPrefix is the namespace that holds stage refs
const RefPrefix = "refs/stages/"

// Stage names are a single ref path component. Origin refs join two names
// with a slash, so a slash inside a name would make them ambiguous.
var stageNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Ref identifies one stage pointer.
// Remote selects the remote partition. Origin, on the local partition, names
// the stage the local index was inherited from for a cross-stage merge.
type Ref struct {
	Stage  string
	Remote bool
	Origin string
}

// LocalRef returns the local-partition ref for stage
func LocalRef(stage string) Ref {
	return Ref{Stage: stage}
}

// RemoteRef returns the remote-partition ref for stage
func RemoteRef(stage string) Ref {
	return Ref{Stage: stage, Remote: true}
}

// OriginRef returns the local-partition ref for stage inherited from origin
func OriginRef(stage, origin string) Ref {
	return Ref{Stage: stage, Origin: origin}
}

// ReferenceName returns the full git reference name for the ref
func (r Ref) ReferenceName() plumbing.ReferenceName {
	switch {
	case r.Remote:
		return plumbing.ReferenceName(RefPrefix + "remote/" + r.Stage)
	case r.Origin != "":
		return plumbing.ReferenceName(RefPrefix + "origin/" + r.Origin + "/" + r.Stage)
	default:
		return plumbing.ReferenceName(RefPrefix + "local/" + r.Stage)
	}
}

func (r Ref) String() string {
	return r.ReferenceName().String()
}

// ValidateStageName checks that name can be stored as a ref path component
func ValidateStageName(name string) error {
	if !stageNameRegex.MatchString(name) || strings.Contains(name, "..") || strings.HasSuffix(name, ".lock") {
		return fmt.Errorf("invalid stage name %q", name)
	}
	return nil
}

// RefStore maps stage names to index hashes
type RefStore interface {
	// ReadRef returns the hash the ref points to, or false if it does not exist
	ReadRef(ctx context.Context, ref Ref) (index.Hash, bool, error)
	// WriteRef points ref at hash
	WriteRef(ctx context.Context, ref Ref, hash index.Hash) error
	// ListStages returns the stages with a ref in one partition, sorted
	ListStages(ctx context.Context, remote bool) ([]string, error)
}

// GitRefStore implements RefStore with go-git hash references
type GitRefStore struct {
	storer storer.ReferenceStorer
}

// NewRefStore creates a RefStore backed by the given reference storer
func NewRefStore(s storer.ReferenceStorer) *GitRefStore {
	return &GitRefStore{storer: s}
}

// ReadRef reads the hash stored in ref
func (s *GitRefStore) ReadRef(ctx context.Context, ref Ref) (index.Hash, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if err := validateRef(ref); err != nil {
		return "", false, err
	}

	r, err := s.storer.Reference(ref.ReferenceName())
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read ref %s: %w", ref, err)
	}
	if r.Type() != plumbing.HashReference {
		return "", false, fmt.Errorf("ref %s is not a hash reference", ref)
	}
	return index.Hash(r.Hash().String()), true, nil
}

// WriteRef creates or updates ref to point at hash
func (s *GitRefStore) WriteRef(ctx context.Context, ref Ref, hash index.Hash) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateRef(ref); err != nil {
		return err
	}
	if !index.IsHash(string(hash)) {
		return fmt.Errorf("cannot point ref %s at malformed hash %q", ref, hash)
	}

	r := plumbing.NewHashReference(ref.ReferenceName(), plumbing.NewHash(string(hash)))
	if err := s.storer.SetReference(r); err != nil {
		return fmt.Errorf("failed to write ref %s: %w", ref, err)
	}
	return nil
}

// ListStages returns the names of the stages with a ref in the local or
// remote partition, sorted. Origin refs are not listed.
func (s *GitRefStore) ListStages(ctx context.Context, remote bool) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := LocalRef("").ReferenceName().String()
	if remote {
		prefix = RemoteRef("").ReferenceName().String()
	}

	iter, err := s.storer.IterReferences()
	if err != nil {
		return nil, fmt.Errorf("failed to list refs: %w", err)
	}
	defer iter.Close()

	var stages []string
	err = iter.ForEach(func(r *plumbing.Reference) error {
		if name := r.Name().String(); strings.HasPrefix(name, prefix) {
			stages = append(stages, strings.TrimPrefix(name, prefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list refs: %w", err)
	}

	sort.Strings(stages)
	return stages, nil
}

func validateRef(ref Ref) error {
	if err := ValidateStageName(ref.Stage); err != nil {
		return err
	}
	if ref.Origin != "" {
		return ValidateStageName(ref.Origin)
	}
	return nil
}
