package errs

import (
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestWrap_NilCauseYieldsNilError(t *testing.T) {
	err := Wrap(Internal, "should not happen", nil)
	require.Nil(t, err)
}

func TestIs_MatchesDirectKind(t *testing.T) {
	err := New(ConfigurationLoad, "bad json")
	require.True(t, Is(err, ConfigurationLoad))
	require.False(t, Is(err, Internal))
}

func TestIs_MatchesThroughPkgErrorsWrap(t *testing.T) {
	base := Wrap(ResourceMissing, "no stemmer for language", pkgerrors.New("boom"))
	wrapped := pkgerrors.Wrapf(base, "loading resources")
	require.True(t, Is(wrapped, ResourceMissing))
}

func TestError_MessageIncludesKindAndCause(t *testing.T) {
	err := Wrap(ModelShape, "weights vs features", pkgerrors.New("4 != 5"))
	require.Contains(t, err.Error(), "ModelShape")
	require.Contains(t, err.Error(), "4 != 5")
}
