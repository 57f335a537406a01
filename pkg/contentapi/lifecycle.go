package contentapi

import (
	"context"
)

// Outcome is the HTTP-level result of a visibility decision.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeNotFound
	OutcomeGone
)

// Err converts the outcome to the matching sentinel, nil for OutcomeOK.
func (o Outcome) Err(op, subject string) error {
	switch o {
	case OutcomeNotFound:
		return notFound(op, subject)
	case OutcomeGone:
		return gone(op, subject)
	default:
		return nil
	}
}

// LifecycleState summarises an item's editions for default (non-versioned)
// access.
type LifecycleState int

const (
	// NoEdition means the item has no editions at all
	NoEdition LifecycleState = iota
	// DraftOnly means nothing is published and the fallback edition is a draft
	DraftOnly
	// Published means at least one edition is published
	Published
	// ArchivedOnly means nothing is published and the fallback edition is archived
	ArchivedOnly
)

func (s LifecycleState) String() string {
	switch s {
	case DraftOnly:
		return "draft_only"
	case Published:
		return "published"
	case ArchivedOnly:
		return "archived_only"
	default:
		return "no_edition"
	}
}

// Resolution is the edition chosen for a request and what it implies.
type Resolution struct {
	Edition *Edition
	State   LifecycleState
	Outcome Outcome
}

// EditionLifecycleResolver decides which edition of an item a requester may
// see.
type EditionLifecycleResolver struct {
	store          Store
	editionBearing map[string]struct{}
}

// NewEditionLifecycleResolver creates a resolver. owningApps lists the apps
// whose items carry versioned editions.
func NewEditionLifecycleResolver(store Store, owningApps []string) *EditionLifecycleResolver {
	set := make(map[string]struct{}, len(owningApps))
	for _, app := range owningApps {
		set[app] = struct{}{}
	}
	return &EditionLifecycleResolver{store: store, editionBearing: set}
}

// IsEditionBearing reports whether item's content lives in editions.
func (r *EditionLifecycleResolver) IsEditionBearing(item *ContentItem) bool {
	_, ok := r.editionBearing[item.OwningApp]
	return ok
}

// ResolveItemVisibility gates default access on the item state: archived is
// gone, anything else that is not live is not found.
func ResolveItemVisibility(item *ContentItem) Outcome {
	switch item.State {
	case ItemStateLive:
		return OutcomeOK
	case ItemStateArchived:
		return OutcomeGone
	default:
		return OutcomeNotFound
	}
}

// ResolveDefault picks the edition shown without an explicit version.
// editions must be ordered by version (insertion order for equal versions).
//
// The latest published edition wins. Without one, the earliest edition is
// returned with not found, or gone when that edition is archived.
func ResolveDefault(editions []Edition) Resolution {
	for i := len(editions) - 1; i >= 0; i-- {
		if editions[i].IsPublished() {
			e := editions[i]
			return Resolution{Edition: &e, State: Published, Outcome: OutcomeOK}
		}
	}
	if len(editions) == 0 {
		return Resolution{State: NoEdition, Outcome: OutcomeNotFound}
	}
	first := editions[0]
	if first.IsArchived() {
		return Resolution{Edition: &first, State: ArchivedOnly, Outcome: OutcomeGone}
	}
	return Resolution{Edition: &first, State: DraftOnly, Outcome: OutcomeNotFound}
}

// ResolveVersion picks the edition with exactly version. Its own state is
// irrelevant; callers must have passed the authorization gate first.
func ResolveVersion(editions []Edition, version int) Resolution {
	for i := range editions {
		if editions[i].VersionNumber == version {
			e := editions[i]
			return Resolution{Edition: &e, State: stateOf(editions), Outcome: OutcomeOK}
		}
	}
	return Resolution{State: stateOf(editions), Outcome: OutcomeNotFound}
}

func stateOf(editions []Edition) LifecycleState {
	return ResolveDefault(editions).State
}

// Resolve loads the item's editions and applies ResolveVersion when version
// is non-nil, ResolveDefault otherwise.
func (r *EditionLifecycleResolver) Resolve(ctx context.Context, item *ContentItem, version *int) (Resolution, error) {
	editions, err := r.store.ListEditions(ctx, item.ID)
	if err != nil {
		return Resolution{}, err
	}
	if version != nil {
		return ResolveVersion(editions, *version), nil
	}
	return ResolveDefault(editions), nil
}
