package domain_test

import (
	"testing"

	"github.com/aussiebroadwan/qayimli/internal/accounts/domain"
	"github.com/stretchr/testify/require"
)

func TestUserNameFromEmail(t *testing.T) {
	require.Equal(t, "sara", domain.UserNameFromEmail("sara@example.com"))
	require.Equal(t, "no-at-sign", domain.UserNameFromEmail("no-at-sign"))
	require.Equal(t, "", domain.UserNameFromEmail("@example.com"))
}

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "sara@example.com", domain.NormalizeEmail("  Sara@Example.COM "))
}
