package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const docSecret = "test-document-secret"

func TestDocumentTokenRoundTrip(t *testing.T) {
	token, err := GenerateDocumentToken(docSecret, "thesis-1", "theses/u1/thesis-1.pdf", 10*time.Minute)
	require.NoError(t, err)

	claims, err := ParseDocumentToken(token, docSecret)
	require.NoError(t, err)
	require.Equal(t, "thesis-1", claims.ThesisID)
	require.Equal(t, "theses/u1/thesis-1.pdf", claims.DocumentKey)
}

func TestDocumentTokenExpired(t *testing.T) {
	token, err := GenerateDocumentToken(docSecret, "thesis-1", "key", -time.Minute)
	require.NoError(t, err)

	_, err = ParseDocumentToken(token, docSecret)
	require.Error(t, err)
}

func TestDocumentTokenWrongSecret(t *testing.T) {
	token, err := GenerateDocumentToken(docSecret, "thesis-1", "key", time.Minute)
	require.NoError(t, err)

	_, err = ParseDocumentToken(token, "other-secret")
	require.Error(t, err)
}
