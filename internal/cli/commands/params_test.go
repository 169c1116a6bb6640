package commands

import (
	"crypto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fzdarsky/srpkit/pkg/srp"
)

func TestOverrideParams(t *testing.T) {
	base := srp.DefaultParams()

	tests := []struct {
		name     string
		bits     int
		hash     string
		wantBits int
		wantHash crypto.Hash
		wantErr  bool
	}{
		{name: "no override", wantBits: 2048, wantHash: crypto.SHA256},
		{name: "group only", bits: 3072, wantBits: 3072, wantHash: crypto.SHA256},
		{name: "hash only", hash: "sha512", wantBits: 2048, wantHash: crypto.SHA512},
		{name: "both", bits: 1024, hash: "SHA1", wantBits: 1024, wantHash: crypto.SHA1},
		{name: "unknown group", bits: 1000, wantErr: true},
		{name: "unknown hash", hash: "md5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := overrideParams(base, tt.bits, tt.hash)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBits, p.Group().Bits())
			assert.Equal(t, tt.wantHash, p.Hash())
		})
	}
}

func TestOverrideParamsKeepsLegacyMultiplier(t *testing.T) {
	base, err := srp.NewParams(srp.RFC5054Group1024, crypto.SHA1, srp.WithLegacyMultiplier())
	require.NoError(t, err)

	p, err := overrideParams(base, 2048, "")
	require.NoError(t, err)
	assert.True(t, p.Legacy())
}

func TestDescribeParams(t *testing.T) {
	info := describeParams(srp.DefaultParams())

	assert.Equal(t, "rfc5054.2048", info.Group)
	assert.Equal(t, 2048, info.Bits)
	assert.Equal(t, "sha256", info.Hash)
	assert.Equal(t, "H(N, g)", info.Multiplier)
	assert.Len(t, info.N, 512)
	assert.Len(t, info.G, 512)
	assert.True(t, strings.HasSuffix(info.G, "02"))

	legacy, err := srp.NewParams(srp.RFC5054Group1024, crypto.SHA1, srp.WithLegacyMultiplier())
	require.NoError(t, err)
	info = describeParams(legacy)
	assert.Equal(t, "3", info.Multiplier)
	assert.True(t, strings.HasSuffix(info.K, "03"))
}
