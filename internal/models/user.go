package models

import (
	"strings"
	"time"
)

// UserRole represents the role of an account.
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// UserStatus represents the approval state of an account.
type UserStatus string

const (
	UserPending         UserStatus = "PENDING"
	UserWaitingApproval UserStatus = "WAITING_APPROVAL"
	UserApproved        UserStatus = "APPROVED"
	UserRejected        UserStatus = "REJECTED"
)

// PlanType represents a subscription plan.
type PlanType string

const (
	PlanMonthly   PlanType = "MONTHLY"
	PlanSixMonths PlanType = "SIX_MONTHS"
	PlanAnnual    PlanType = "ANNUAL"
)

// User represents a journal owner profile.
type User struct {
	ID              string     `json:"id"`
	DisplayID       string     `json:"display_id"`
	Email           string     `json:"email"`
	Name            string     `json:"name"`
	Mobile          string     `json:"mobile,omitempty"`
	IsPaid          bool       `json:"is_paid"`
	Role            UserRole   `json:"role"`
	Status          UserStatus `json:"status"`
	JoinedAt        time.Time  `json:"joined_at"`
	OwnReferralCode string     `json:"own_referral_code"`
	SelectedPlan    PlanType   `json:"selected_plan,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewDefaultUser returns the profile used when no stored profile exists yet.
func NewDefaultUser(id, email string, now time.Time) *User {
	prefix := id
	if len(prefix) > 6 {
		prefix = prefix[:6]
	}
	return &User{
		ID:        id,
		DisplayID: "TM-" + strings.ToUpper(prefix),
		Email:     email,
		Name:      "Trader",
		Role:      RoleUser,
		Status:    UserPending,
		JoinedAt:  now,
		UpdatedAt: now,
	}
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
