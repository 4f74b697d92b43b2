package adapter

import "telegram-voice-translator/internal/domain/model"

// JobDispatcher accepts validated inbound messages into the pipeline.
type JobDispatcher interface {
	Dispatch(msg model.InboundMessage) (*model.Job, error)
}

// PipelineInspector exposes a point-in-time view of the pipeline for the
// ops API.
type PipelineInspector interface {
	Stats() model.PipelineStats
}
