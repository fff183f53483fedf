package prompts

import (
	"encoding/json"
	"slices"
)

// Stage is an enrichment pipeline step a prompt drives.
type Stage string

const (
	StageClassify  Stage = "classify"
	StageExtract   Stage = "extract"
	StageSummarize Stage = "summarize"
)

var stages = []Stage{
	StageClassify,
	StageExtract,
	StageSummarize,
}

// Stages returns the valid stages in pipeline order.
func Stages() []Stage {
	return stages
}

// UnmarshalJSON validates that the decoded string is a known stage value.
// An empty string decodes to the zero Stage.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*s = ""
		return nil
	}
	v, err := ParseStage(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStage validates a string as a known stage.
func ParseStage(s string) (Stage, error) {
	v := Stage(s)
	if !slices.Contains(stages, v) {
		return "", ErrInvalidStage
	}
	return v, nil
}
