package services

// ServiceError carries an HTTP-mappable status alongside the message so
// controllers stay thin.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}
