package models

import (
	"time"
)

// FriendRequestStatus is the lifecycle state of a friend request.
type FriendRequestStatus string

const (
	StatusPending  FriendRequestStatus = "pending"
	StatusAccepted FriendRequestStatus = "accepted"
	StatusRejected FriendRequestStatus = "rejected"
)

// IsTerminal reports whether no further transition is possible.
func (s FriendRequestStatus) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// IsDecision reports whether s is a status a recipient may resolve a request to.
func (s FriendRequestStatus) IsDecision() bool {
	return s.IsTerminal()
}

// IsValid reports whether s is one of the known statuses.
func (s FriendRequestStatus) IsValid() bool {
	return s == StatusPending || s.IsTerminal()
}

// FriendRequest is a directed request from FromUserID to ToUserID.
// There is at most one record per ordered (FromUserID, ToUserID) pair.
type FriendRequest struct {
	ID         string              `bson:"_id" gorm:"primaryKey;size:36" json:"id"`
	FromUserID string              `bson:"from_user" gorm:"size:36;not null;uniqueIndex:idx_friend_requests_pair,priority:1;index:idx_friend_requests_from_status,priority:1" json:"from_user"`
	ToUserID   string              `bson:"to_user" gorm:"size:36;not null;uniqueIndex:idx_friend_requests_pair,priority:2;index:idx_friend_requests_to_status,priority:1" json:"to_user"`
	Status     FriendRequestStatus `bson:"status" gorm:"size:10;not null;index:idx_friend_requests_from_status,priority:2;index:idx_friend_requests_to_status,priority:2" json:"status"`
	CreatedAt  time.Time           `bson:"created_at" gorm:"not null" json:"created_at"`
}

// Involves reports whether userID is the sender or the recipient.
func (r FriendRequest) Involves(userID string) bool {
	return r.FromUserID == userID || r.ToUserID == userID
}

// FriendRequestView is a friend request with both parties expanded.
type FriendRequestView struct {
	ID        string              `json:"id"`
	FromUser  PublicUser          `json:"from_user"`
	ToUser    PublicUser          `json:"to_user"`
	Status    FriendRequestStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
}
