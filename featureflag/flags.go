package featureflag

type Flag string

const (
	FlagDisableSceneState                Flag = "DISABLE_SCENE_STATE"
	FlagDisableParticipantJoinBroadcast  Flag = "DISABLE_PARTICIPANT_JOIN_BROADCAST"
	FlagDisableParticipantLeaveBroadcast Flag = "DISABLE_PARTICIPANT_LEAVE_BROADCAST"
	FlagDisableObjectAddBroadcast        Flag = "DISABLE_OBJECT_ADD_BROADCAST"
)
