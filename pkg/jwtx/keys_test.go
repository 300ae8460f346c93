package jwtx_test

import (
	"testing"

	"github.com/aussiebroadwan/qayimli/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestKeyConfig_Validate(t *testing.T) {
	require.NoError(t, testKeys().Validate())

	tests := []struct {
		name   string
		mutate func(k *jwtx.KeyConfig)
	}{
		{"empty secret", func(k *jwtx.KeyConfig) { k.Secret = nil }},
		{"short secret", func(k *jwtx.KeyConfig) { k.Secret = []byte("too-short") }},
		{"no issuer", func(k *jwtx.KeyConfig) { k.Issuer = "" }},
		{"no audience", func(k *jwtx.KeyConfig) { k.Audience = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := testKeys()
			tt.mutate(&k)
			require.ErrorIs(t, k.Validate(), jwtx.ErrKeyConfig)
		})
	}
}

func TestKeyConfig_Accessors(t *testing.T) {
	k := testKeys()
	require.Equal(t, k.Secret, k.MaterialKey())
	require.Equal(t, "https://accounts.qayimli.test", k.IssuerName())
	require.Equal(t, "qayimli-web", k.AudienceName())
}
