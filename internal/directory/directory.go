// Package directory resolves the members that can be invited to a
// reservation. The roster lives in a JSON file so operators can edit it
// without a rebuild; the file is re-read on every lookup.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pablotasuyuki/Sistema-Agendamento-de-Salas/internal/booking"
)

type rosterFile struct {
	EligibleRoles []string       `json:"eligible_roles"`
	ExcludedIDs   []string       `json:"excluded_ids"`
	Members       []rosterMember `json:"members"`
}

type rosterMember struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Username    string   `json:"username"`
	Roles       []string `json:"roles"`
}

// FileDirectory implements booking.MemberDirectory over a JSON roster file.
type FileDirectory struct {
	path string
}

// NewFileDirectory points the directory at the roster file. The file is not
// opened here; a missing roster only surfaces when members are first needed.
func NewFileDirectory(path string) *FileDirectory {
	return &FileDirectory{path: path}
}

// EligibleMembers lists the invitable members, sorted by display name. A
// member qualifies when it carries at least one eligible role (or the roster
// declares no role filter) and is not on the exclusion list.
func (d *FileDirectory) EligibleMembers(ctx context.Context) ([]booking.Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(d.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster %s: %w", d.path, err)
	}

	var roster rosterFile
	if err := json.Unmarshal(raw, &roster); err != nil {
		return nil, fmt.Errorf("failed to decode roster %s: %w", d.path, err)
	}

	excluded := make(map[string]struct{}, len(roster.ExcludedIDs))
	for _, id := range roster.ExcludedIDs {
		excluded[id] = struct{}{}
	}
	eligibleRoles := make(map[string]struct{}, len(roster.EligibleRoles))
	for _, role := range roster.EligibleRoles {
		eligibleRoles[role] = struct{}{}
	}

	members := make([]booking.Member, 0, len(roster.Members))
	for _, m := range roster.Members {
		if m.ID == "" {
			continue
		}
		if _, skip := excluded[m.ID]; skip {
			continue
		}
		if len(eligibleRoles) > 0 && !hasAnyRole(m.Roles, eligibleRoles) {
			continue
		}
		name := strings.TrimSpace(m.DisplayName)
		if name == "" {
			name = m.Username
		}
		members = append(members, booking.Member{
			ID:          m.ID,
			DisplayName: name,
			Username:    m.Username,
		})
	}

	sort.Slice(members, func(i, j int) bool {
		if members[i].DisplayName != members[j].DisplayName {
			return members[i].DisplayName < members[j].DisplayName
		}
		return members[i].ID < members[j].ID
	})
	return members, nil
}

func hasAnyRole(roles []string, eligible map[string]struct{}) bool {
	for _, role := range roles {
		if _, ok := eligible[role]; ok {
			return true
		}
	}
	return false
}
