package database

import (
	"context"
	"errors"
	"fmt"

	"tripbudget/models"

	"gorm.io/gorm"
)

// Directory 从行程表与用户表读取成员与展示信息
type Directory struct {
	db *gorm.DB
}

// NewDirectory 创建成员目录
func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

// Membership 行程不存在时返回 models.ErrNotFound
func (d *Directory) Membership(ctx context.Context, itineraryID uint) (*models.Membership, error) {
	var it models.Itinerary
	err := d.db.WithContext(ctx).
		Preload("Collaborators", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&it, itineraryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NotFoundError("itinerary", itineraryID)
	}
	if err != nil {
		return nil, fmt.Errorf("load itinerary: %w", err)
	}
	return models.NewMembership(it.ID, it.OwnerID, it.Collaborators), nil
}

// Profiles 批量读取用户展示信息
func (d *Directory) Profiles(ctx context.Context, memberIDs []uint) (map[uint]models.Profile, error) {
	profiles := make(map[uint]models.Profile, len(memberIDs))
	if len(memberIDs) == 0 {
		return profiles, nil
	}
	var users []models.User
	if err := d.db.WithContext(ctx).Where("id IN ?", memberIDs).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	for _, u := range users {
		profiles[u.ID] = u.Profile()
	}
	return profiles, nil
}
