package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_PasswordIsHashed(t *testing.T) {
	account := &Account{Email: "owner@example.com"}
	require.NoError(t, account.SetPassword("hunter22"))

	assert.NotEqual(t, "hunter22", account.PasswordHash)
	assert.NoError(t, account.CheckPassword("hunter22"))
	assert.Error(t, account.CheckPassword("hunter23"))
}
