package errs

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestKindOf_WrappedErrors(t *testing.T) {
	nf := NotFound("missingno")
	require.Equal(t, KindNotFound, KindOf(nf))
	require.Equal(t, KindNotFound, KindOf(fmt.Errorf("lookup: %w", nf)))
	require.True(t, IsNotFound(errors.Wrap(nf, "outer")))

	require.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	require.Equal(t, KindUnknown, KindOf(nil))
}

func TestError_Messages(t *testing.T) {
	require.Equal(t, `pokemon with identifier "missingno" not found`, NotFound("missingno").Error())

	v := Validation("invalid search parameters", "name must be between 2 and 50 characters", "limit must be between 1 and 100")
	require.Contains(t, v.Error(), "invalid search parameters")
	require.Contains(t, v.Error(), "limit must be between 1 and 100")
	require.True(t, IsValidation(v))

	cause := errors.New("connection refused")
	u := Unavailable("GET /pokemon/1", 0, cause)
	require.True(t, IsUnavailable(u))
	require.ErrorIs(t, u, cause)
	require.Contains(t, u.Error(), "connection refused")
}

func TestAs(t *testing.T) {
	e, ok := As(fmt.Errorf("x: %w", Unavailable("bad gateway", 502, nil)))
	require.True(t, ok)
	require.Equal(t, 502, e.StatusCode)

	_, ok = As(errors.New("plain"))
	require.False(t, ok)
}
