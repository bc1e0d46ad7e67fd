package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"askpa/internal/model"
)

func TestPersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")

	first := New(path)
	for i := 0; i < 5; i++ {
		require.NoError(t, first.Create(model.User{
			ID:        fmt.Sprintf("u%d", i),
			FirstName: fmt.Sprintf("First%d", i),
			LastName:  fmt.Sprintf("Last%d", i),
			Email:     fmt.Sprintf("user%d@example.com", i),
			Password:  fmt.Sprintf("pw%d", i),
		}))
	}

	// A fresh registry loading the same file sees the identical mapping.
	second := New(path)
	require.NoError(t, second.Load())
	assert.Equal(t, 5, second.Count())
	for i := 0; i < 5; i++ {
		user := second.GetByID(fmt.Sprintf("u%d", i))
		require.NotNil(t, user)
		assert.Equal(t, fmt.Sprintf("First%d", i), user.FirstName)
		assert.Equal(t, fmt.Sprintf("Last%d", i), user.LastName)
		assert.Equal(t, fmt.Sprintf("user%d@example.com", i), user.Email)
		assert.Equal(t, fmt.Sprintf("pw%d", i), user.Password)
	}
}

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	reg := New(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, reg.Load())
	assert.Equal(t, 0, reg.Count())
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	reg := New(path)
	assert.Error(t, reg.Load())
}

func TestDeleteRemovesUserAndRewritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	reg := New(path)
	require.NoError(t, reg.Create(model.User{ID: "u1", Email: "a@b.com"}))
	require.NoError(t, reg.Create(model.User{ID: "u2", Email: "c@d.com"}))

	require.NoError(t, reg.Delete("u1"))
	assert.Nil(t, reg.GetByID("u1"))

	reloaded := New(path)
	require.NoError(t, reloaded.Load())
	assert.Nil(t, reloaded.GetByID("u1"))
	assert.NotNil(t, reloaded.GetByID("u2"))

	// Deleting an unknown id is a no-op.
	require.NoError(t, reg.Delete("missing"))
}

func TestFindByEmailExactVersusFold(t *testing.T) {
	reg := New(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, reg.Create(model.User{ID: "u1", Email: "Ada@Example.com"}))

	assert.Nil(t, reg.FindByEmail("ada@example.com"))
	require.NotNil(t, reg.FindByEmail("Ada@Example.com"))

	found := reg.FindByEmailFold("  ada@EXAMPLE.com ")
	require.NotNil(t, found)
	assert.Equal(t, "u1", found.ID)
}
