package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	authDomain "github.com/allisson/warden/internal/auth/domain"
)

func TestStatus_Valid(t *testing.T) {
	assert.True(t, StatusDraft.Valid())
	assert.True(t, StatusPublished.Valid())
	assert.False(t, Status("archived").Valid())
	assert.False(t, Status("").Valid())
}

func TestPost_OwnedAndFields(t *testing.T) {
	owner := uuid.New()
	post := &Post{ID: uuid.New(), OwnerID: owner, Status: StatusPublished}

	var owned authDomain.Owned = post
	id, ok := authDomain.ReferenceID(owned.Owner())
	assert.True(t, ok)
	assert.Equal(t, owner, id)

	assert.True(t, authDomain.NewFilter(authDomain.Eq(authDomain.FieldStatus, "published")).Matches(post.Fields()))
	assert.True(t, authDomain.NewFilter(authDomain.Eq(authDomain.FieldOwnerID, owner)).Matches(post.Fields()))
	assert.False(t, authDomain.NewFilter(authDomain.Eq(authDomain.FieldOwnerID, uuid.New())).Matches(post.Fields()))
}

func TestListPostsInput_Filter(t *testing.T) {
	assert.True(t, (*ListPostsInput)(nil).Filter().IsEmpty())

	status := StatusDraft
	owner := uuid.New()
	filter := (&ListPostsInput{Status: &status, OwnerID: &owner}).Filter()

	assert.True(t, filter.Has(authDomain.FieldStatus))
	assert.True(t, filter.Has(authDomain.FieldOwnerID))
	assert.Len(t, filter.Clauses(), 2)
}
