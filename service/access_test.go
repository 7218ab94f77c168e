package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripbudget/models"
)

type failingMembers struct{ err error }

func (f failingMembers) Membership(context.Context, uint) (*models.Membership, error) {
	return nil, f.err
}

func TestAccessResolver_Resolve(t *testing.T) {
	f := newFixture(t)
	f.addViewer()
	ctx := context.Background()

	tests := []struct {
		actor uint
		want  Capability
	}{
		{ownerID, CapabilityOwner},
		{editorID, CapabilityEditor},
		{viewerID, CapabilityViewer},
		{otherID, CapabilityNone},
	}
	for _, tt := range tests {
		got, err := f.access.Resolve(ctx, tripID, tt.actor)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "actor %d", tt.actor)
	}

	assert.True(t, CapabilityOwner.CanEdit())
	assert.True(t, CapabilityEditor.CanEdit())
	assert.False(t, CapabilityViewer.CanEdit())
	assert.True(t, CapabilityViewer.CanRead())
	assert.False(t, CapabilityNone.CanRead())
	assert.Equal(t, "editor", CapabilityEditor.String())
}

func TestAccessResolver_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.access.Resolve(context.Background(), 12345, ownerID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAccessResolver_ReadsMembershipEveryCall(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.access.RequireMember(ctx, tripID, viewerID)
	assert.ErrorIs(t, err, models.ErrForbidden)

	f.addViewer()
	_, err = f.access.RequireMember(ctx, tripID, viewerID)
	assert.NoError(t, err)
	_, err = f.access.RequireEditor(ctx, tripID, viewerID)
	assert.ErrorIs(t, err, models.ErrForbidden)

	f.dir.AddCollaborator(tripID, viewerID, models.RoleEditor)
	_, err = f.access.RequireEditor(ctx, tripID, viewerID)
	assert.NoError(t, err)
}

func TestAccessResolver_StoreFailureIsInternal(t *testing.T) {
	r := NewAccessResolver(failingMembers{err: errors.New("connection refused")})
	_, err := r.RequireMember(context.Background(), tripID, ownerID)
	assert.ErrorIs(t, err, models.ErrInternal)
	assert.NotErrorIs(t, err, models.ErrNotFound)
}
