package models

import "github.com/aukilabs/raido/wire"

// A scene participant.
type Participant struct {
	ID        uint32
	Responder wire.ResponseSender
}

// ParticipantIDs extracts the ids of the given participants.
func ParticipantIDs(participants []*Participant) []uint32 {
	ids := make([]uint32, len(participants))
	for i, p := range participants {
		ids[i] = p.ID
	}
	return ids
}
