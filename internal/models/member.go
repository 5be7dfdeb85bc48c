package models

import (
	"regexp"
	"strings"
)

// Role represents the capability tier of a committee member.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleExecutive Role = "executive"
	RoleMember    Role = "member"
)

// MemberStatus marks whether a member may use the portal.
type MemberStatus string

const (
	MemberStatusActive  MemberStatus = "active"
	MemberStatusBlocked MemberStatus = "blocked"
)

// PositionPresident is the deletion-protected anchor of the live roster.
const PositionPresident = "President"

// Department names of the committee.
const (
	TeamCore       = "Core"
	TeamTechnical  = "Technical"
	TeamCultural   = "Cultural"
	TeamSport      = "Sport"
	TeamPR         = "PR"
	TeamMultimedia = "Multimedia"
	TeamDiscipline = "Discipline"
	TeamDrafting   = "Drafting"
)

// Member is one committee roster record. Field names mirror the store's
// document shape so archived members restore byte-compatibly.
type Member struct {
	ID             string       `json:"id"`
	Email          string       `json:"email"`
	Name           string       `json:"name"`
	Position       string       `json:"position"`
	Year           string       `json:"year,omitempty"`
	Team           string       `json:"team"`
	Role           Role         `json:"role"`
	HierarchyLevel int          `json:"hierarchyLevel"`
	Status         MemberStatus `json:"status"`
}

// IsPresident reports whether the member holds the presidential post.
func (m Member) IsPresident() bool {
	return m.Position == PositionPresident
}

var prPattern = regexp.MustCompile(`\bpr\b`)

// TeamForPosition derives a department from a free-text position title,
// used when a member record carries no explicit team.
func TeamForPosition(position string) string {
	p := strings.ToLower(position)
	switch {
	case strings.Contains(p, "cultural"), strings.Contains(p, "art"),
		strings.Contains(p, "anchor"), strings.Contains(p, "event"),
		strings.Contains(p, "dance"):
		return TeamCultural
	case strings.Contains(p, "sport"):
		return TeamSport
	case strings.Contains(p, "technical"), strings.Contains(p, "developer"):
		return TeamTechnical
	case prPattern.MatchString(p), strings.Contains(p, "marketing"):
		return TeamPR
	case strings.Contains(p, "multimedia"), strings.Contains(p, "social media"),
		strings.Contains(p, "designer"), strings.Contains(p, "videographer"):
		return TeamMultimedia
	case strings.Contains(p, "discipline"):
		return TeamDiscipline
	case strings.Contains(p, "documentation"), strings.Contains(p, "magazine"),
		strings.Contains(p, "report"):
		return TeamDrafting
	default:
		return TeamCore
	}
}
