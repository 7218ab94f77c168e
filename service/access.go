package service

import (
	"context"
	"fmt"

	"tripbudget/models"
)

// Capability 操作者对行程的访问级别，owner ⊇ editor ⊇ viewer
type Capability int

const (
	CapabilityNone Capability = iota
	CapabilityViewer
	CapabilityEditor
	CapabilityOwner
)

func (c Capability) String() string {
	switch c {
	case CapabilityViewer:
		return "viewer"
	case CapabilityEditor:
		return "editor"
	case CapabilityOwner:
		return "owner"
	default:
		return "none"
	}
}

// CanRead 任意成员可读
func (c Capability) CanRead() bool { return c >= CapabilityViewer }

// CanEdit 所有者与编辑者可写
func (c Capability) CanEdit() bool { return c >= CapabilityEditor }

// AccessResolver 每次调用都重新读取成员列表，不做跨请求缓存
type AccessResolver struct {
	members MembershipProvider
}

// NewAccessResolver 创建访问控制
func NewAccessResolver(members MembershipProvider) *AccessResolver {
	return &AccessResolver{members: members}
}

// CapabilityOf 根据成员快照计算访问级别
func CapabilityOf(m *models.Membership, actorID uint) Capability {
	switch m.RoleOf(actorID) {
	case "owner":
		return CapabilityOwner
	case models.RoleEditor:
		return CapabilityEditor
	case models.RoleViewer:
		return CapabilityViewer
	default:
		return CapabilityNone
	}
}

// Resolve 返回操作者的访问级别，行程不存在时返回 ErrNotFound
func (r *AccessResolver) Resolve(ctx context.Context, itineraryID, actorID uint) (Capability, error) {
	m, err := r.membership(ctx, itineraryID)
	if err != nil {
		return CapabilityNone, err
	}
	return CapabilityOf(m, actorID), nil
}

// Authorize 要求操作者至少具备 need 级别，返回本次读取的成员快照
func (r *AccessResolver) Authorize(ctx context.Context, itineraryID, actorID uint, need Capability) (*models.Membership, error) {
	m, err := r.membership(ctx, itineraryID)
	if err != nil {
		return nil, err
	}
	if got := CapabilityOf(m, actorID); got < need {
		return nil, fmt.Errorf("actor %d has %s access to itinerary %d, %s required: %w",
			actorID, got, itineraryID, need, models.ErrForbidden)
	}
	return m, nil
}

// RequireEditor 所有者或编辑者
func (r *AccessResolver) RequireEditor(ctx context.Context, itineraryID, actorID uint) (*models.Membership, error) {
	return r.Authorize(ctx, itineraryID, actorID, CapabilityEditor)
}

// RequireMember 任意成员
func (r *AccessResolver) RequireMember(ctx context.Context, itineraryID, actorID uint) (*models.Membership, error) {
	return r.Authorize(ctx, itineraryID, actorID, CapabilityViewer)
}

func (r *AccessResolver) membership(ctx context.Context, itineraryID uint) (*models.Membership, error) {
	m, err := r.members.Membership(ctx, itineraryID)
	if err != nil {
		return nil, storeError("load membership", err)
	}
	return m, nil
}
