package model

// All lists every persisted model for auto-migration.
func All() []interface{} {
	return []interface{}{
		&Profile{},
		&ActivityRecord{},
		&UserPoint{},
		&Streak{},
		&Badge{},
		&UserBadge{},
		&Challenge{},
		&ChallengeParticipant{},
		&Reward{},
		&RewardRedemption{},
		&Article{},
		&Community{},
		&CommunityMember{},
		&Notification{},
	}
}
