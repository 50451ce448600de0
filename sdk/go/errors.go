package deploygun

import (
	"errors"
	"fmt"

	"github.com/deploygun/deploygun/internal/config"
)

// Sentinel errors returned by the SDK.
var (
	// ErrNilConfig is returned by New when no configuration is given.
	ErrNilConfig = fmt.Errorf("deploygun: nil configuration")

	// ErrMissingConfig is wrapped into Check and Notify errors when a
	// required setting has no value. Test for it with errors.Is.
	ErrMissingConfig = config.ErrMissing
)

// IsMissingConfig reports whether err stems from a required setting
// having no value.
func IsMissingConfig(err error) bool {
	return errors.Is(err, ErrMissingConfig)
}
