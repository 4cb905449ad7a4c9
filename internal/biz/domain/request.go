package domain

// Message count bounds for a summarise invocation
const (
	DefaultMessageCount = 10
	MinMessageCount     = 1
	MaxMessageCount     = 100
)

// ClampCount clamps a requested message count into [MinMessageCount, MaxMessageCount]
func ClampCount(n int) int {
	if n < MinMessageCount {
		return MinMessageCount
	}
	if n > MaxMessageCount {
		return MaxMessageCount
	}
	return n
}

// InvocationRequest represents one summarise invocation
type InvocationRequest struct {
	RequestedCount int
	User           Identity
	Channel        Identity
}

// NewInvocationRequest creates a request; a nil count means the parameter was omitted
func NewInvocationRequest(count *int, user, channel Identity) *InvocationRequest {
	requested := DefaultMessageCount
	if count != nil {
		requested = *count
	}
	return &InvocationRequest{
		RequestedCount: requested,
		User:           user,
		Channel:        channel,
	}
}

// EffectiveCount returns the clamped count actually used for retrieval
func (r *InvocationRequest) EffectiveCount() int {
	return ClampCount(r.RequestedCount)
}
