package testdatasets

// HTTP status codes the tool distinguishes.
const (
	StatusOK              = 200
	StatusTooManyRequests = 429
	StatusGatewayTimeout  = 504
)

// Submission outcomes.
const (
	outcomePassed   = "passed"
	outcomeFailed   = "failed"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// PercentageMultiplier converts ratios to percentages.
const PercentageMultiplier = 100
