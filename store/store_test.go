package store

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edadash/loader"
	"edadash/models"
)

func TestStore_EvictsLeastRecentlyUsed(t *testing.T) {
	s, err := New(2)
	require.NoError(t, err)

	a := s.Create()
	b := s.Create()
	_, ok := s.Get(a.ID) // a is now most recent
	require.True(t, ok)
	c := s.Create()

	assert.Equal(t, 2, s.Len())
	_, ok = s.Get(b.ID)
	assert.False(t, ok, "b should have been evicted")
	_, ok = s.Get(c.ID)
	assert.True(t, ok)

	ws, created := s.GetOrCreate(b.ID)
	assert.True(t, created)
	assert.NotEqual(t, b.ID, ws.ID)

	ws, created = s.GetOrCreate(c.ID)
	assert.False(t, created)
	assert.Equal(t, c.ID, ws.ID)
}

func TestNew_RejectsZeroLimit(t *testing.T) {
	_, err := New(0)
	assert.Error(t, err)
}

func TestWorkspace_PutOpenRemove(t *testing.T) {
	s, err := New(4)
	require.NoError(t, err)
	ws := s.Create()

	assert.False(t, ws.Has(models.KindTest))
	_, err = ws.Open(models.KindTest)
	assert.Error(t, err)

	ws.Put(models.KindTest, "test.csv", []byte("商品ID,店舗ID\n1,0\n"))
	require.True(t, ws.Has(models.KindTest))
	rc, err := ws.Open(models.KindTest)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Contains(t, string(body), "商品ID")

	st := ws.Status()
	assert.Equal(t, ws.ID, st.SessionID)
	require.Len(t, st.Files, len(models.AllKinds))
	for _, f := range st.Files {
		assert.Equal(t, f.Kind == models.KindTest, f.Present, "kind %s", f.Kind)
		assert.Equal(t, f.Kind != models.KindSubmission, f.Required)
	}

	ws.Remove(models.KindTest)
	assert.False(t, ws.Has(models.KindTest))

	ws.Put(models.KindSalesHistory, "a.csv", []byte("x"))
	ws.Clear()
	assert.False(t, ws.Has(models.KindSalesHistory))
}

func TestWorkspace_IsALoaderSource(t *testing.T) {
	var _ loader.Source = (*Workspace)(nil)
}
