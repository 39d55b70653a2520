package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/playdesk/support-desk/pkg/util/errorutil"
)

func TestValidateReportsJSONFieldNames(t *testing.T) {
	err := Validate(CreatePlayerRequest{Email: "not-an-email", Password: "short"})
	require.Error(t, err)

	de := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeValidation, de.Code)
	assert.Equal(t, "required", de.Details["name"])
	assert.Equal(t, "email", de.Details["email"])
	assert.Equal(t, "min=8", de.Details["password"])
	assert.Equal(t, "required", de.Details["player_number"])
	assert.NotContains(t, de.Details, "avatar")
}

func TestValidateTitleLength(t *testing.T) {
	long := make([]byte, 201)
	for i := range long {
		long[i] = 'a'
	}
	err := Validate(CreateTicketRequest{Title: string(long), Description: "d"})
	assert.Equal(t, "max=200", apperrors.ToDomainError(err).Details["title"])

	assert.NoError(t, Validate(CreateTicketRequest{Title: "ok", Description: "d"}))
}
