package semantic

import "fmt"

// ResponseError reports a classifier response that does not conform to the
// verdict schema. The affected record is skipped, never flagged.
type ResponseError struct {
	Reason string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("semantic: bad classifier response: %s", e.Reason)
}

// ServiceError reports a classifier call that failed after retries.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("semantic: %s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
