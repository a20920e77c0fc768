package slip39

import (
	hermiterr "github.com/unchained-capital/hermit/pkg/errors"
)

var (
	errInvalidMnemonic    = hermiterr.ErrInvalidMnemonic
	errMismatchedFamily   = hermiterr.ErrMismatchedFamily
	errInsufficientShards = hermiterr.ErrInsufficientShards
)
