package repository

import "errors"

var (
	ErrBrowserLaunch    = errors.New("browser could not be launched")
	ErrNavigationFailed = errors.New("navigation failed")
	ErrPageLoadTimeout  = errors.New("page load timed out")
	ErrNotFound         = errors.New("not found")
)
