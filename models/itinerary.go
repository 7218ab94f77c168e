package models

import (
	"time"

	"gorm.io/gorm"
)

// 协作者角色
const (
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// Itinerary 行程（聚合根，行程本身的增删改由行程服务负责）
type Itinerary struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	OwnerID       uint           `json:"owner_id" gorm:"index;not null"`
	Title         string         `json:"title" gorm:"size:200"`
	Collaborators []Collaborator `json:"collaborators" gorm:"foreignKey:ItineraryID"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (Itinerary) TableName() string {
	return "itineraries"
}

// Collaborator 行程协作者
type Collaborator struct {
	ID          uint   `json:"-" gorm:"primaryKey"`
	ItineraryID uint   `json:"-" gorm:"not null;uniqueIndex:idx_itinerary_member"`
	MemberID    uint   `json:"member_id" gorm:"not null;uniqueIndex:idx_itinerary_member"`
	Role        string `json:"role" gorm:"size:10;not null;default:viewer"`
}

// TableName 设置表名
func (Collaborator) TableName() string {
	return "itinerary_collaborators"
}

// Membership 行程成员快照：所有者 + 按加入顺序排列的协作者
type Membership struct {
	ItineraryID   uint
	OwnerID       uint
	Collaborators []Collaborator
}

// NewMembership 构建成员快照，丢弃重复成员以及与所有者重复的协作者
func NewMembership(itineraryID, ownerID uint, collaborators []Collaborator) *Membership {
	seen := map[uint]bool{ownerID: true}
	kept := make([]Collaborator, 0, len(collaborators))
	for _, c := range collaborators {
		if seen[c.MemberID] {
			continue
		}
		seen[c.MemberID] = true
		kept = append(kept, c)
	}
	return &Membership{ItineraryID: itineraryID, OwnerID: ownerID, Collaborators: kept}
}

// MemberIDs 所有者在前，协作者按原顺序
func (m *Membership) MemberIDs() []uint {
	ids := make([]uint, 0, len(m.Collaborators)+1)
	ids = append(ids, m.OwnerID)
	for _, c := range m.Collaborators {
		ids = append(ids, c.MemberID)
	}
	return ids
}

// Count 成员人数
func (m *Membership) Count() int {
	return len(m.Collaborators) + 1
}

// IsMember 是否为所有者或协作者
func (m *Membership) IsMember(memberID uint) bool {
	return m.RoleOf(memberID) != ""
}

// RoleOf 返回成员角色，所有者返回 "owner"，非成员返回空串
func (m *Membership) RoleOf(memberID uint) string {
	if memberID == m.OwnerID {
		return "owner"
	}
	for _, c := range m.Collaborators {
		if c.MemberID == memberID {
			return c.Role
		}
	}
	return ""
}
