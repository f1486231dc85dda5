package doctor

import "errors"

var (
	ErrDoctorNotFound         = errors.New("doctor not found")
	ErrSpecialtyNotFound      = errors.New("specialty not found")
	ErrSpecialtyAlreadyExists = errors.New("specialty with this name already exists")
)
