package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantLen int
	}{
		{"128-bit token", TokenSize128, 22},
		{"256-bit token", TokenSize256, 43},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.Len(t, token, tt.wantLen)

			token2, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.NotEqual(t, token, token2, "tokens should be unique")
		})
	}
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		token, err := GenerateToken(size)
		require.Error(t, err)
		require.Empty(t, token)
	}
}

func TestFingerprintToken(t *testing.T) {
	fp1a := FingerprintToken("test-token-1")
	fp1b := FingerprintToken("test-token-1")
	fp2 := FingerprintToken("test-token-2")

	require.Equal(t, fp1a, fp1b, "fingerprint should be deterministic")
	require.NotEqual(t, fp1a, fp2)
	require.Len(t, fp1a, 43, "SHA-256 base64url should be 43 chars")
}

func TestSeal(t *testing.T) {
	a := Seal("key", "user-1", "stamp-1")

	require.Equal(t, a, Seal("key", "user-1", "stamp-1"))
	require.NotEqual(t, a, Seal("other-key", "user-1", "stamp-1"))
	require.NotEqual(t, a, Seal("key", "user-1", "stamp-2"))
	require.Len(t, a, 43)
}

func TestTokensEqual(t *testing.T) {
	require.True(t, TokensEqual("abc", "abc"))
	require.False(t, TokensEqual("abc", "abd"))
	require.False(t, TokensEqual("abc", "ab"))
}
