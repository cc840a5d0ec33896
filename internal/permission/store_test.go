package permission

import (
	"context"
	"testing"

	"github.com/leapstack-labs/goadmin/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMenus struct {
	calls []uint
	tree  *api.MenuTree
	err   error
}

func (f *fakeMenus) UserAccessTree(_ context.Context, userID uint) (*api.MenuTree, error) {
	f.calls = append(f.calls, userID)
	return f.tree, f.err
}

func TestStore_GenerateRoutes(t *testing.T) {
	src := &fakeMenus{tree: &api.MenuTree{MenuTree: sampleMenus()}}
	s := NewStore(src)
	assert.False(t, s.Generated())

	accessed, err := s.GenerateRoutes(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, []uint{42}, src.calls)
	assert.Len(t, accessed, 2)

	assert.True(t, s.Generated())
	assert.Equal(t, accessed, s.AddRoutes())
	assert.Len(t, s.Routes(), len(ConstantRoutes())+2)
	assert.Equal(t, "/login", s.Routes()[0].Path)
	assert.Equal(t, "/system", s.Routes()[3].Path)

	s.Reset()
	assert.False(t, s.Generated())
	assert.Nil(t, s.Routes())
	assert.Nil(t, s.AddRoutes())
}

func TestStore_GenerateRoutesError(t *testing.T) {
	s := NewStore(&fakeMenus{err: assert.AnError})
	_, err := s.GenerateRoutes(context.Background(), 1)
	require.ErrorIs(t, err, assert.AnError)
	assert.False(t, s.Generated())

	_, err = NewStore(nil).GenerateRoutes(context.Background(), 1)
	require.Error(t, err)
}

func TestStore_WithViews(t *testing.T) {
	s := NewStore(&fakeMenus{tree: &api.MenuTree{MenuTree: sampleMenus()}}).
		WithViews(ViewResolverFunc(func(m string) (any, error) { return m, nil }))

	accessed, err := s.GenerateRoutes(context.Background(), 1)
	require.NoError(t, err)

	got, err := accessed[1].Component.(*View).Load()
	require.NoError(t, err)
	assert.Equal(t, "@/views/log/index", got)
}
