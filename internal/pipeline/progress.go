package pipeline

// ProgressEvent is one progress update emitted while a pipeline stage runs.
type ProgressEvent struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback receives progress events. Callbacks must be fast; stages
// invoke them inline.
type ProgressCallback func(event ProgressEvent)

// Emit invokes the callback when one is configured.
func (cb ProgressCallback) Emit(stage, message string, content any) {
	if cb != nil {
		cb(ProgressEvent{Stage: stage, Message: message, Content: content})
	}
}
