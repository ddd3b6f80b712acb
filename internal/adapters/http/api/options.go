package api

// Default request limits.
const defaultMaxBodyBytes = 64 << 20

// Option configures the assess handler.
type Option func(*AssessHandler)

// WithMaxBodyBytes caps the size of an assess request body.
func WithMaxBodyBytes(n int64) Option {
	return func(h *AssessHandler) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}
