package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	tabPrefix   = "tab-"
	groupPrefix = "group-"
)

// Ref identifies the tab or group a view represents.
type Ref struct {
	TabID   int
	GroupID string
}

// IsGroup reports whether the reference names a group.
func (r Ref) IsGroup() bool {
	return r.GroupID != ""
}

// String returns the reference in data attribute form.
func (r Ref) String() string {
	if r.IsGroup() {
		return groupPrefix + r.GroupID
	}
	return tabPrefix + strconv.Itoa(r.TabID)
}

// ParseDataID parses "tab-<n>" or "group-<id>".
func ParseDataID(s string) (Ref, error) {
	switch {
	case strings.HasPrefix(s, tabPrefix):
		id, err := strconv.Atoi(strings.TrimPrefix(s, tabPrefix))
		if err != nil {
			return Ref{}, fmt.Errorf("invalid tab id %q: %w", s, err)
		}
		return Ref{TabID: id}, nil
	case strings.HasPrefix(s, groupPrefix) && len(s) > len(groupPrefix):
		return Ref{GroupID: strings.TrimPrefix(s, groupPrefix)}, nil
	default:
		return Ref{}, fmt.Errorf("unrecognised data id %q", s)
	}
}

// Membership is the group information carried in a tab's extension data.
type Membership struct {
	Group       string `json:"group"`
	GroupActive bool   `json:"groupActive"`
}

// ParseMembership decodes a tab's extension data. Empty data means no group.
func ParseMembership(extData string) (Membership, error) {
	var m Membership
	if strings.TrimSpace(extData) == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(extData), &m); err != nil {
		return Membership{}, fmt.Errorf("failed to parse group membership: %w", err)
	}
	return m, nil
}

// ResolveTab returns the tab a reference points at. For a group that is the
// member flagged active in its membership data, or the first member when none is.
func ResolveTab(ctx context.Context, store TabStore, ref Ref) (Tab, error) {
	if !ref.IsGroup() {
		return store.Tab(ctx, ref.TabID)
	}

	tabs, err := store.GroupTabs(ctx, ref.GroupID)
	if err != nil {
		return Tab{}, err
	}

	var first *Tab
	for i := range tabs {
		m, err := ParseMembership(tabs[i].ExtData)
		if err != nil {
			return Tab{}, fmt.Errorf("tab %d: %w", tabs[i].ID, err)
		}
		if m.Group != ref.GroupID {
			continue
		}
		if m.GroupActive {
			return tabs[i], nil
		}
		if first == nil {
			first = &tabs[i]
		}
	}

	if first == nil {
		return Tab{}, fmt.Errorf("group %s: %w", ref.GroupID, ErrTabNotFound)
	}
	return *first, nil
}
