package services

import "errors"

var (
	ErrRequestNotFound      = errors.New("blood request not found")
	ErrDonorNotFound        = errors.New("donor not found")
	ErrMatchNotFound        = errors.New("donor match not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrHospitalNotFound     = errors.New("hospital not found")
	ErrInvalidTransition    = errors.New("illegal match status transition")
)
