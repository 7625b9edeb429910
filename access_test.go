package registryauth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlugin(t *testing.T) *Plugin {
	t.Helper()
	p, err := New(Config{
		StoreURI:       "mongodb://localhost:27017",
		DatabaseName:   "registry",
		CollectionName: "users",
	}, nil)
	require.NoError(t, err)
	return p
}

func TestAllow_GroupIntersection(t *testing.T) {
	p := newTestPlugin(t)
	ctx := context.Background()

	id := Identity{Name: "alice", Groups: []string{"user", "dev"}}
	policy := PackagePolicy{Name: "left-pad", Access: []string{"dev"}, Publish: []string{"lead"}}

	ok, err := p.AllowAccess(ctx, id, policy)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.AllowPublish(ctx, id, policy)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.False(t, ok)

	// Unpublish consults the publish list.
	ok, err = p.AllowUnpublish(ctx, id, policy)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.False(t, ok)
}

func TestAllow_PublishListGrantsUnpublish(t *testing.T) {
	p := newTestPlugin(t)
	ctx := context.Background()

	id := Identity{Name: "lena", Groups: []string{"lead"}}
	policy := PackagePolicy{Name: "left-pad", Access: []string{"dev"}, Publish: []string{"lead"}}

	ok, err := p.AllowPublish(ctx, id, policy)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.AllowUnpublish(ctx, id, policy)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAllow_EmptySetsDeny(t *testing.T) {
	p := newTestPlugin(t)
	ctx := context.Background()

	ok, err := p.AllowAccess(ctx, Identity{Name: "alice"}, PackagePolicy{Name: "p", Access: []string{"dev"}})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.False(t, ok)

	ok, err = p.AllowAccess(ctx, Identity{Name: "alice", Groups: []string{"dev"}}, PackagePolicy{Name: "p"})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.False(t, ok)
}

func TestIntersects(t *testing.T) {
	tests := []struct {
		name    string
		groups  []string
		allowed []string
		want    bool
	}{
		{"common element", []string{"user", "dev"}, []string{"dev"}, true},
		{"disjoint", []string{"user"}, []string{"lead"}, false},
		{"empty groups", nil, []string{"dev"}, false},
		{"empty allowed", []string{"dev"}, nil, false},
		{"both empty", nil, nil, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, intersects(tc.groups, tc.allowed))
		})
	}
}
