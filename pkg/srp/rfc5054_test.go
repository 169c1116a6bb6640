package srp_test

import (
	"crypto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fzdarsky/srpkit/pkg/srp"
)

// Inputs from RFC 5054 Appendix B. Outputs follow this package's encoding,
// in which g is padded to the width of N before it is hashed.
const (
	vectorUser    = "alice"
	vectorSalt    = "beb25379d1a8581eb5a727673a2441ee"
	vectorX       = "94b7555aabe9127cc58ccf4993db6cf84d16c124"
	vectorSecretA = "60975527035cf2ad1989806f0407210bc81edc04e2762a56afd529ddda2d4393"
	vectorSecretB = "e487cb59d31ac550471e81f00f6928e01dda08e974a004f49e61f5d105284d20"

	vectorK = "7556aa045aef2cdd07abaf0f665c3e818913186f"

	vectorV = "7e273de8696ffc4f4e337d05b4b375beb0dde1569e8fa00a9886d8129bada1f1" +
		"822223ca1a605b530e379ba4729fdc59f105b4787e5186f5c671085a1447b52a" +
		"48cf1970b4fb6f8400bbf4cebfbb168152e08ab5ea53d15c1aff87b2b9da6e04" +
		"e058ad51cc72bfc9033b564e26480d78e955a5e29e7ab245db2be315e2099afb"

	vectorPubA = "61d5e490f6f1b79547b0704c436f523dd0e560f0c64115bb72557ec44352e890" +
		"3211c04692272d8b2d1a5358a2cf1b6e0bfcf99f921530ec8e39356179eae45e" +
		"42ba92aeaced825171e1e8b9af6d9c03e1327f44be087ef06530e69f66615261" +
		"eef54073ca11cf5858f0edfdfe15efeab349ef5d76988a3672fac47b0769447b"

	vectorPubB = "bd0c61512c692c0cb6d041fa01bb152d4916a1e77af46ae105393011baf38964" +
		"dc46a0670dd125b95a981652236f99d9b681cbf87837ec996c6da04453728610" +
		"d0c6ddb58b318885d7d82c7f8deb75ce7bd4fbaa37089e6f9c6059f388838e7a" +
		"00030b331eb76840910440b1b27aaeaeeb4012b7d7665238a8e3fb004b117b58"

	vectorKey         = "017eefa1cefc5c2e626e21598987f31e0f1b11bb"
	vectorClientProof = "62c71b289cb22a034b405667e1541202ce5d8e03"
	vectorServerProof = "b475d7f2d75ce9537748005483e5d326048b59e9"
)

func vectorParams(t *testing.T) *srp.Params {
	t.Helper()
	p, err := srp.NewParams(srp.RFC5054Group1024, crypto.SHA1)
	require.NoError(t, err)
	return p
}

func TestRFC5054Vector_Multiplier(t *testing.T) {
	assert.Equal(t, vectorK, vectorParams(t).K().Hex())
}

func TestRFC5054Vector_Verifier(t *testing.T) {
	v, err := srp.NewClient(vectorParams(t)).DeriveVerifier(vectorX)
	require.NoError(t, err)
	assert.Equal(t, vectorV, v)
}

func TestRFC5054Vector_PublicEphemerals(t *testing.T) {
	params := vectorParams(t)

	A, err := srp.NewClient(params).PublicEphemeral(vectorSecretA)
	require.NoError(t, err)
	assert.Equal(t, vectorPubA, A)

	B, err := srp.NewServer(params).PublicEphemeral(vectorSecretB, vectorV)
	require.NoError(t, err)
	assert.Equal(t, vectorPubB, B)
}

func TestRFC5054Vector_Session(t *testing.T) {
	params := vectorParams(t)
	client := srp.NewClient(params)
	server := srp.NewServer(params)

	clientSession, err := client.DeriveSession(vectorSecretA, vectorPubB, vectorSalt, vectorUser, vectorX)
	require.NoError(t, err)
	assert.Equal(t, vectorKey, clientSession.Key)
	assert.Equal(t, vectorClientProof, clientSession.Proof)

	serverSession, err := server.DeriveSession(vectorSecretB, vectorPubA, vectorSalt, vectorUser, vectorV, clientSession.Proof)
	require.NoError(t, err)
	assert.Equal(t, vectorKey, serverSession.Key)
	assert.Equal(t, vectorServerProof, serverSession.Proof)

	require.NoError(t, client.VerifySession(vectorPubA, clientSession, serverSession.Proof))
}
