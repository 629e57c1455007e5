package video

import "github.com/kikiluvv/vidlabel/internal/records"

// Observer receives processing events. Process calls it synchronously.
type Observer interface {
	OnRecordStart(rec records.LabelRecord)
	OnDecodeError(rec records.LabelRecord, frame int, err error)
	OnOutcome(out Outcome)
}

// NopObserver ignores all events
type NopObserver struct{}

func (NopObserver) OnRecordStart(records.LabelRecord)             {}
func (NopObserver) OnDecodeError(records.LabelRecord, int, error) {}
func (NopObserver) OnOutcome(Outcome)                             {}

// Observers fans events out in order
type Observers []Observer

func (obs Observers) OnRecordStart(rec records.LabelRecord) {
	for _, o := range obs {
		o.OnRecordStart(rec)
	}
}

func (obs Observers) OnDecodeError(rec records.LabelRecord, frame int, err error) {
	for _, o := range obs {
		o.OnDecodeError(rec, frame, err)
	}
}

func (obs Observers) OnOutcome(out Outcome) {
	for _, o := range obs {
		o.OnOutcome(out)
	}
}
