package models

import (
	dErrors "talentgate/pkg/domain-errors"
)

// Stage is an application's position in the ordered recruitment pipeline.
//
// Invariant: stages only advance forward through stageOrder. The ordering is
// defined once here; any code that needs "what comes after X" must go through
// Next so the forward-only rule stays mechanically checkable.
type Stage string

const (
	StageApplication             Stage = "APPLICATION"
	StageGeneralCompetencies     Stage = "GENERAL_COMPETENCIES"
	StageSpecializedCompetencies Stage = "SPECIALIZED_COMPETENCIES"
	StageInterview               Stage = "INTERVIEW"
	StageAgreement               Stage = "AGREEMENT"
	StageSigned                  Stage = "SIGNED"
)

var stageOrder = []Stage{
	StageApplication,
	StageGeneralCompetencies,
	StageSpecializedCompetencies,
	StageInterview,
	StageAgreement,
	StageSigned,
}

var stageIndex = func() map[Stage]int {
	m := make(map[Stage]int, len(stageOrder))
	for i, s := range stageOrder {
		m[s] = i
	}
	return m
}()

// ParseStage constructs a Stage from external input.
func ParseStage(s string) (Stage, error) {
	stage := Stage(s)
	if !stage.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid pipeline stage")
	}
	return stage, nil
}

// IsValid checks if the stage is one of the pipeline stages.
func (s Stage) IsValid() bool {
	_, ok := stageIndex[s]
	return ok
}

// Next returns the following stage; ok is false at SIGNED.
func (s Stage) Next() (Stage, bool) {
	i, known := stageIndex[s]
	if !known || i == len(stageOrder)-1 {
		return "", false
	}
	return stageOrder[i+1], true
}

// Before reports whether s comes strictly earlier in the pipeline than other.
func (s Stage) Before(other Stage) bool {
	return stageIndex[s] < stageIndex[other]
}

func (s Stage) String() string { return string(s) }

// Status is the application's lifecycle state, orthogonal to Stage.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
	StatusWithdrawn Status = "WITHDRAWN"
)

var validStatuses = map[Status]bool{
	StatusActive:    true,
	StatusAccepted:  true,
	StatusRejected:  true,
	StatusWithdrawn: true,
}

// ParseStatus constructs a Status from external input.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !validStatuses[status] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid application status")
	}
	return status, nil
}

func (s Status) String() string { return string(s) }
