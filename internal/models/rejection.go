package models

// SlotRef identifies a weekly slot in a rejection.
type SlotRef struct {
	ClassroomID string `json:"classroom_id,omitempty"`
	SlotID      string `json:"slot_id,omitempty"`
	Weekday     string `json:"weekday"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

// AssignmentRejection is the structured reason an assignment request was refused.
type AssignmentRejection struct {
	Kind            string            `json:"kind"`
	Message         string            `json:"message"`
	EntityIDs       map[string]string `json:"entity_ids,omitempty"`
	Rule            string            `json:"rule,omitempty"`
	Slot            *SlotRef          `json:"slot,omitempty"`
	ConflictingSlot *SlotRef          `json:"conflicting_slot,omitempty"`
}

func (r *AssignmentRejection) Error() string {
	if r == nil {
		return "<nil>"
	}
	return r.Message
}
