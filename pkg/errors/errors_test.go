package errors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hermiterr "github.com/unchained-capital/hermit/pkg/errors"
)

var (
	errInner     = errors.New("inner")
	errRootCause = errors.New("root cause")
	errPlain     = errors.New("plain error")
	errPlainCode = errors.New("plain")
)

func TestExitCodes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"success", nil, hermiterr.ExitSuccess},
		{"general error", hermiterr.ErrGeneral, hermiterr.ExitGeneral},
		{"invalid mnemonic", hermiterr.ErrInvalidMnemonic, hermiterr.ExitInput},
		{"invalid qr sequence", hermiterr.ErrInvalidQRSequence, hermiterr.ExitInput},
		{"invalid psbt", hermiterr.ErrInvalidPSBT, hermiterr.ExitInput},
		{"invalid signature request", hermiterr.ErrInvalidSignatureRequest, hermiterr.ExitInput},
		{"invalid coordinator signature", hermiterr.ErrInvalidCoordinatorSignature, hermiterr.ExitInput},
		{"mismatched family", hermiterr.ErrMismatchedFamily, hermiterr.ExitInput},
		{"insufficient shards", hermiterr.ErrInsufficientShards, hermiterr.ExitInput},
		{"wallet locked", hermiterr.ErrWalletLocked, hermiterr.ExitAuth},
		{"invalid path", hermiterr.ErrInvalidPath, hermiterr.ExitInput},
		{"not found", hermiterr.ErrNotFound, hermiterr.ExitNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			code := hermiterr.ExitCode(tt.err)
			assert.Equal(t, tt.expected, code)
		})
	}
}

func TestExitCodeWrappedError(t *testing.T) {
	t.Parallel()
	wrapped := hermiterr.Wrap(hermiterr.ErrWalletLocked, "unlock main")
	code := hermiterr.ExitCode(wrapped)
	assert.Equal(t, hermiterr.ExitAuth, code)
}

func TestSentinelErrors(t *testing.T) {
	t.Parallel()
	wrapped := hermiterr.Wrap(hermiterr.ErrGeneral, "wrapped")
	require.ErrorIs(t, wrapped, hermiterr.ErrGeneral)

	wrapped = hermiterr.Wrap(hermiterr.ErrInvalidMnemonic, "wrapped")
	require.ErrorIs(t, wrapped, hermiterr.ErrInvalidMnemonic)

	wrapped = hermiterr.Wrap(hermiterr.ErrWalletLocked, "wrapped")
	require.ErrorIs(t, wrapped, hermiterr.ErrWalletLocked)

	wrapped = hermiterr.Wrap(hermiterr.ErrInsufficientShards, "wrapped")
	require.ErrorIs(t, wrapped, hermiterr.ErrInsufficientShards)

	wrapped = hermiterr.Wrap(hermiterr.ErrMismatchedFamily, "wrapped")
	require.ErrorIs(t, wrapped, hermiterr.ErrMismatchedFamily)

	wrapped = hermiterr.Wrap(hermiterr.ErrInvalidPath, "wrapped")
	require.ErrorIs(t, wrapped, hermiterr.ErrInvalidPath)
}

func TestErrorCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err      error
		expected string
	}{
		{hermiterr.ErrGeneral, "GENERAL_ERROR"},
		{hermiterr.ErrInvalidMnemonic, "INVALID_MNEMONIC"},
		{hermiterr.ErrInvalidQRSequence, "INVALID_QR_SEQUENCE"},
		{hermiterr.ErrInvalidPSBT, "INVALID_PSBT"},
		{hermiterr.ErrInvalidSignatureRequest, "INVALID_SIGNATURE_REQUEST"},
		{hermiterr.ErrInvalidCoordinatorSignature, "INVALID_COORDINATOR_SIGNATURE"},
		{hermiterr.ErrMismatchedFamily, "MISMATCHED_FAMILY"},
		{hermiterr.ErrInsufficientShards, "INSUFFICIENT_SHARDS"},
		{hermiterr.ErrWalletLocked, "WALLET_LOCKED"},
		{hermiterr.ErrInvalidPath, "INVALID_PATH"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			t.Parallel()
			var he *hermiterr.HermitError
			require.ErrorAs(t, tt.err, &he)
			assert.Equal(t, tt.expected, he.Code)
		})
	}
}

func TestWithDetails(t *testing.T) {
	t.Parallel()
	details := map[string]string{
		"have": "1",
		"need": "2",
	}

	err := hermiterr.WithDetails(hermiterr.ErrInsufficientShards, details)

	var he *hermiterr.HermitError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, details, he.Details)
}

func TestWithSuggestion(t *testing.T) {
	t.Parallel()
	suggestion := "present one more shard from group 2"
	err := hermiterr.WithSuggestion(hermiterr.ErrInsufficientShards, suggestion)

	var he *hermiterr.HermitError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, suggestion, he.Suggestion)
}

func TestWithDetailsAndSuggestion(t *testing.T) {
	t.Parallel()
	details := map[string]string{"key": "value"}
	suggestion := "try this instead"

	err := hermiterr.WithDetails(hermiterr.ErrGeneral, details)
	err = hermiterr.WithSuggestion(err, suggestion)

	var he *hermiterr.HermitError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, details, he.Details)
	assert.Equal(t, suggestion, he.Suggestion)
}

func TestWrap(t *testing.T) {
	t.Parallel()
	wrapped := hermiterr.Wrap(hermiterr.ErrInvalidPath, "path %s", "m/")
	assert.Contains(t, wrapped.Error(), "path m/")
	assert.ErrorIs(t, wrapped, hermiterr.ErrInvalidPath)
}

func TestNew(t *testing.T) {
	t.Parallel()
	err := hermiterr.New("CUSTOM_ERROR", "custom error message")
	assert.Equal(t, "custom error message", err.Error())

	var he *hermiterr.HermitError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "CUSTOM_ERROR", he.Code)
}

func TestHermitError_Error(t *testing.T) {
	t.Parallel()

	t.Run("message only", func(t *testing.T) {
		t.Parallel()
		err := &hermiterr.HermitError{Code: "TEST", Message: "something failed"}
		assert.Equal(t, "something failed", err.Error())
	})

	t.Run("with details sorted", func(t *testing.T) {
		t.Parallel()
		err := &hermiterr.HermitError{
			Code:    "TEST",
			Message: "failed",
			Details: map[string]string{"beta": "2", "alpha": "1"},
		}
		assert.Equal(t, "failed (alpha: 1) (beta: 2)", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		t.Parallel()
		err := &hermiterr.HermitError{
			Code:    "TEST",
			Message: "outer",
			Cause:   errInner,
		}
		assert.Equal(t, "outer: inner", err.Error())
	})

	t.Run("with details and cause", func(t *testing.T) {
		t.Parallel()
		err := &hermiterr.HermitError{
			Code:    "TEST",
			Message: "outer",
			Details: map[string]string{"key": "val"},
			Cause:   errInner,
		}
		assert.Equal(t, "outer (key: val): inner", err.Error())
	})
}

func TestHermitError_Error_deterministic(t *testing.T) {
	t.Parallel()
	err := &hermiterr.HermitError{
		Code:    "TEST",
		Message: "msg",
		Details: map[string]string{
			"charlie": "3",
			"alpha":   "1",
			"bravo":   "2",
			"delta":   "4",
		},
	}
	first := err.Error()
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, err.Error(), "Error() output must be deterministic (iteration %d)", i)
	}
}

func TestHermitError_Unwrap(t *testing.T) {
	t.Parallel()

	t.Run("with cause", func(t *testing.T) {
		t.Parallel()
		err := &hermiterr.HermitError{Code: "TEST", Message: "wrapper", Cause: errRootCause}
		assert.Equal(t, errRootCause, err.Unwrap())
	})

	t.Run("nil cause", func(t *testing.T) {
		t.Parallel()
		err := &hermiterr.HermitError{Code: "TEST", Message: "no cause"}
		assert.NoError(t, err.Unwrap())
	})
}

func TestHermitError_Is(t *testing.T) {
	t.Parallel()

	t.Run("matching code", func(t *testing.T) {
		t.Parallel()
		a := &hermiterr.HermitError{Code: "SAME_CODE", Message: "a"}
		b := &hermiterr.HermitError{Code: "SAME_CODE", Message: "b"}
		assert.True(t, a.Is(b))
	})

	t.Run("different code", func(t *testing.T) {
		t.Parallel()
		a := &hermiterr.HermitError{Code: "CODE_A", Message: "a"}
		b := &hermiterr.HermitError{Code: "CODE_B", Message: "b"}
		assert.False(t, a.Is(b))
	})

	t.Run("non-HermitError target", func(t *testing.T) {
		t.Parallel()
		a := &hermiterr.HermitError{Code: "TEST", Message: "a"}
		assert.False(t, a.Is(errPlain))
	})
}

func TestAs(t *testing.T) {
	t.Parallel()

	t.Run("HermitError target", func(t *testing.T) {
		t.Parallel()
		err := hermiterr.Wrap(hermiterr.ErrNotFound, "wrapped")
		var he *hermiterr.HermitError
		assert.True(t, hermiterr.As(err, &he))
		assert.Equal(t, "NOT_FOUND", he.Code)
	})

	t.Run("non-HermitError", func(t *testing.T) {
		t.Parallel()
		var he *hermiterr.HermitError
		assert.False(t, hermiterr.As(errPlain, &he))
	})
}

func TestIs(t *testing.T) {
	t.Parallel()

	t.Run("matching sentinel", func(t *testing.T) {
		t.Parallel()
		wrapped := hermiterr.Wrap(hermiterr.ErrNotFound, "context")
		assert.True(t, hermiterr.Is(wrapped, hermiterr.ErrNotFound))
	})

	t.Run("non-matching", func(t *testing.T) {
		t.Parallel()
		wrapped := hermiterr.Wrap(hermiterr.ErrNotFound, "context")
		assert.False(t, hermiterr.Is(wrapped, hermiterr.ErrWalletLocked))
	})

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()
		assert.False(t, hermiterr.Is(nil, hermiterr.ErrGeneral))
	})
}

func TestCode_edgeCases(t *testing.T) {
	t.Parallel()

	t.Run("HermitError", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "NOT_FOUND", hermiterr.Code(hermiterr.ErrNotFound))
	})

	t.Run("non-HermitError", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "GENERAL_ERROR", hermiterr.Code(errPlainCode))
	})

	t.Run("nil", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "GENERAL_ERROR", hermiterr.Code(nil))
	})
}

func TestWrap_edgeCases(t *testing.T) {
	t.Parallel()

	t.Run("nil input", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, hermiterr.Wrap(nil, "context"))
	})

	t.Run("non-HermitError", func(t *testing.T) {
		t.Parallel()
		wrapped := hermiterr.Wrap(errPlain, "context")
		var he *hermiterr.HermitError
		require.ErrorAs(t, wrapped, &he)
		assert.Equal(t, "GENERAL_ERROR", he.Code)
		assert.Equal(t, "context", he.Message)
		assert.Equal(t, errPlain, he.Cause)
	})

	t.Run("format args", func(t *testing.T) {
		t.Parallel()
		wrapped := hermiterr.Wrap(hermiterr.ErrNotFound, "shard %s index %d", "alpha", 0)
		assert.Contains(t, wrapped.Error(), "shard alpha index 0")
	})

	t.Run("field preservation", func(t *testing.T) {
		t.Parallel()
		original := hermiterr.WithDetails(hermiterr.ErrNotFound, map[string]string{"key": "val"})
		original = hermiterr.WithSuggestion(original, "try this")
		wrapped := hermiterr.Wrap(original, "context")

		var he *hermiterr.HermitError
		require.ErrorAs(t, wrapped, &he)
		assert.Equal(t, "NOT_FOUND", he.Code)
		assert.Equal(t, map[string]string{"key": "val"}, he.Details)
		assert.Equal(t, "try this", he.Suggestion)
		assert.Equal(t, hermiterr.ExitNotFound, he.ExitCode)
	})
}

func TestWithDetails_edgeCases(t *testing.T) {
	t.Parallel()

	t.Run("nil input", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, hermiterr.WithDetails(nil, map[string]string{"k": "v"}))
	})

	t.Run("non-HermitError input", func(t *testing.T) {
		t.Parallel()
		result := hermiterr.WithDetails(errPlain, map[string]string{"k": "v"})
		var he *hermiterr.HermitError
		require.ErrorAs(t, result, &he)
		assert.Equal(t, "GENERAL_ERROR", he.Code)
		assert.Equal(t, "plain error", he.Message)
		assert.Equal(t, map[string]string{"k": "v"}, he.Details)
		assert.Equal(t, errPlain, he.Cause)
	})
}

func TestWithSuggestion_edgeCases(t *testing.T) {
	t.Parallel()

	t.Run("nil input", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, hermiterr.WithSuggestion(nil, "suggestion"))
	})

	t.Run("non-HermitError input", func(t *testing.T) {
		t.Parallel()
		result := hermiterr.WithSuggestion(errPlain, "try this")
		var he *hermiterr.HermitError
		require.ErrorAs(t, result, &he)
		assert.Equal(t, "GENERAL_ERROR", he.Code)
		assert.Equal(t, "plain error", he.Message)
		assert.Equal(t, "try this", he.Suggestion)
		assert.Equal(t, errPlain, he.Cause)
	})
}

func TestExitCode_nonHermitError(t *testing.T) {
	t.Parallel()
	assert.Equal(t, hermiterr.ExitGeneral, hermiterr.ExitCode(errPlain))
}
