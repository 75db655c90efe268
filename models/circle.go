package models

import "time"

type CircleType string

const (
	CircleClub     CircleType = "club"
	CircleFriends  CircleType = "friends"
	CircleLocation CircleType = "location"
	CircleInterest CircleType = "interest"
	CircleSchool   CircleType = "school"
	CircleCompany  CircleType = "company"
)

type CirclePrivacy string

const (
	PrivacyPublic           CirclePrivacy = "public"
	PrivacyInviteOnly       CirclePrivacy = "invite_only"
	PrivacyApprovalRequired CirclePrivacy = "approval_required"
)

type CircleSettings struct {
	AllowInvites    bool `json:"allow_invites"`
	RequireApproval bool `json:"require_approval"`
	AllowEvents     bool `json:"allow_events"`
	AllowRanking    bool `json:"allow_ranking"`
}

type CircleStats struct {
	ActiveMembers int     `json:"active_members"`
	TotalMatches  int     `json:"total_matches"`
	EventsCount   int     `json:"events_count"`
	AvgLevel      float64 `json:"avg_level"`
}

type Circle struct {
	ID          int            `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	Description string         `json:"description" db:"description"`
	Avatar      string         `json:"avatar" db:"avatar"`
	Type        CircleType     `json:"type" db:"type"`
	Privacy     CirclePrivacy  `json:"privacy" db:"privacy"`
	MemberCount int            `json:"member_count" db:"member_count"`
	MaxMembers  int            `json:"max_members" db:"max_members"`
	Location    string         `json:"location,omitempty" db:"location"`
	Tags        []string       `json:"tags" db:"tags"`
	CreatedBy   int            `json:"created_by" db:"created_by"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
	Settings    CircleSettings `json:"settings" db:"settings"`
	Stats       CircleStats    `json:"stats" db:"stats"`
}

type MembershipRole string

const (
	RoleOwner       MembershipRole = "owner"
	RoleCircleAdmin MembershipRole = "admin"
	RoleMember      MembershipRole = "member"
)

type MembershipStatus string

const (
	MembershipActive  MembershipStatus = "active"
	MembershipPending MembershipStatus = "pending"
	MembershipBanned  MembershipStatus = "banned"
)

type CircleProfile struct {
	Nickname     string `json:"nickname,omitempty"`
	Bio          string `json:"bio,omitempty"`
	CustomAvatar string `json:"custom_avatar,omitempty"`
}

type MemberPermissions struct {
	CanInvite       bool `json:"can_invite"`
	CanCreateEvents bool `json:"can_create_events"`
	CanModerate     bool `json:"can_moderate"`
}

// CircleMembership links a user to a circle. At most one membership per
// (circle, user) pair, and at most one owner per circle; both are
// enforced by the circle service and the unique constraints beneath it.
type CircleMembership struct {
	CircleID    int               `json:"circle_id" db:"circle_id"`
	UserID      int               `json:"user_id" db:"user_id"`
	Role        MembershipRole    `json:"role" db:"role"`
	Status      MembershipStatus  `json:"status" db:"status"`
	JoinedAt    time.Time         `json:"joined_at" db:"joined_at"`
	InvitedBy   *int              `json:"invited_by,omitempty" db:"invited_by"`
	Profile     CircleProfile     `json:"circle_profile" db:"profile"`
	Permissions MemberPermissions `json:"permissions" db:"permissions"`
}
