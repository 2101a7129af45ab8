package drafterr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	wrapped := fmt.Errorf("team abc: %w", ErrTeamNotInDraft)
	assert.Equal(t, "team_not_in_draft", Code(wrapped))
	assert.Equal(t, "", Code(errors.New("boom")))
	assert.Equal(t, "", Code(nil))

	for _, c := range codes {
		assert.Equal(t, c.code, Code(FromCode(c.code)))
	}
	assert.Nil(t, FromCode("nope"))
}

func TestIsRejection(t *testing.T) {
	assert.True(t, IsRejection(fmt.Errorf("x: %w", ErrNotYourTurn)))
	assert.False(t, IsRejection(ErrDependencyUnavailable))
	assert.False(t, IsRejection(ErrDraftHalted))
}
