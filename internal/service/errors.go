package service

import "errors"

var ErrFailedToFetchUser = errors.New("failed to fetch user from user-service")
