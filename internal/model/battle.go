package model

import "time"

// Battle status values.
const (
	BattleActive    = "ACTIVE"
	BattleCompleted = "COMPLETED"
)

// Battle is an informal 1v1 score contest between the current crown
// holder and a challenger.  Scores are bumped by atomic SQL increments
// so concurrent score requests never lose updates.
//
// Fields:
//  ID              – primary key identifier.
//  CrownHolder     – name of the reigning player.
//  Challenger      – name of the challenging player.
//  CrownScore      – crown holder's score.
//  ChallengerScore – challenger's score.
//  Status          – ACTIVE or COMPLETED.
//  StartTime       – when the battle started.
//  EndTime         – when it finished, nil while active.
type Battle struct {
	ID              uint64     // battles.id
	CrownHolder     string     // battles.crown_holder
	Challenger      string     // battles.challenger
	CrownScore      int        // battles.crown_score
	ChallengerScore int        // battles.challenger_score
	Status          string     // battles.status
	StartTime       time.Time  // battles.start_time
	EndTime         *time.Time // battles.end_time (nullable)
}
