package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("invalid request")
	ErrSiteExists      = errors.New("tenant already has a site")
	ErrStageTimeout    = errors.New("stage deadline exceeded")
	ErrProviderFailure = errors.New("provider failure")
)
