package utils

// IsClosed reports whether a channel has been closed without consuming
// a meaningful value. Only safe for channels that are never sent to
// after close.
func IsClosed[T any](ch chan T) bool {
	select {
	case _, ok := <-ch:
		return !ok
	default:
	}
	return false
}
