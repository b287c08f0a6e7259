package credential

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSyntaxVerifier(t *testing.T) {
	tests := []struct {
		name      string
		did       string
		challenge string
		accepted  bool
	}{
		{name: "valid", did: "did:example:42", challenge: "tok123", accepted: true},
		{name: "key method", did: "did:key:z6MkhaXgBZDvotDkL5257faiztiGiC2QtKLGpbnnEGta2doK", challenge: "c", accepted: true},
		{name: "nested id", did: "did:web:example.com:user:alice", challenge: "c", accepted: true},
		{name: "missing did", did: "", challenge: "c", accepted: false},
		{name: "not a did", did: "alice@example.com", challenge: "c", accepted: false},
		{name: "uppercase method", did: "did:EXAMPLE:1", challenge: "c", accepted: false},
		{name: "missing challenge", did: "did:example:42", challenge: "", accepted: false},
	}

	v := NewSyntaxVerifier()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, err := v.Verify(context.Background(), Presentation{DID: tc.did, Challenge: tc.challenge})
			require.NoError(t, err)
			require.Equal(t, tc.accepted, d.Accepted)
			if tc.accepted {
				require.Equal(t, tc.did, d.DID)
			} else {
				require.NotEmpty(t, d.Reason)
			}
		})
	}
}

func TestVerifierFunc(t *testing.T) {
	v := VerifierFunc(func(_ context.Context, p Presentation) (Decision, error) {
		return Reject("nope"), nil
	})
	d, err := v.Verify(context.Background(), Presentation{})
	require.NoError(t, err)
	require.False(t, d.Accepted)
	require.True(t, IsDID("did:example:1"))
}
