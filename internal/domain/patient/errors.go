package patient

import "errors"

var (
	ErrPatientNotFound      = errors.New("patient not found")
	ErrPatientAlreadyExists = errors.New("patient with this national ID already exists")
	ErrInsuranceLapsed      = errors.New("patient insurance payment is missing or older than six months")
	ErrInvalidGender        = errors.New("invalid gender value")
	ErrInvalidDateOfBirth   = errors.New("date of birth cannot be in the future")
)
