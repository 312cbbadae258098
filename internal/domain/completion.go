package domain

// CompletionResult is the normalized outcome of one completion turn.
// Degraded paths (blank input, rate limit, upstream failure) produce the same
// shape with Confidence 0 and an error marker in Metadata.
type CompletionResult struct {
	Message          string            `json:"message"`
	SessionID        string            `json:"session_id"`
	ExtractedProfile map[string]string `json:"user_profile_extracted,omitempty"`
	DetectedIntent   string            `json:"intent_detected,omitempty"`
	Confidence       float64           `json:"confidence"`
	Metadata         map[string]any    `json:"metadata,omitempty"`
}

// Copy returns a shallow-safe copy with its own metadata and profile maps, so
// a cache hit can be rebound to the current request without mutating the
// cached original.
func (r *CompletionResult) Copy() *CompletionResult {
	out := *r
	if r.Metadata != nil {
		out.Metadata = make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			out.Metadata[k] = v
		}
	}
	if r.ExtractedProfile != nil {
		out.ExtractedProfile = make(map[string]string, len(r.ExtractedProfile))
		for k, v := range r.ExtractedProfile {
			out.ExtractedProfile[k] = v
		}
	}
	return &out
}
