package model

import (
	"github.com/picha-labs/picha/types"
)

type GenerationMode string

const (
	ModeSelection GenerationMode = "selection"
	ModePrompt    GenerationMode = "prompt"
	ModeEvolution GenerationMode = "evolution"
)

func ParseGenerationMode(s string) (GenerationMode, error) {
	switch GenerationMode(s) {
	case ModeSelection, ModePrompt, ModeEvolution:
		return GenerationMode(s), nil
	}
	return "", types.AppErrInvalidMode
}

type EventType string

const (
	EventArchitecture EventType = "architecture"
	EventNature       EventType = "nature"
	EventPortrait     EventType = "portrait"
	EventAbstract     EventType = "abstract"
	EventCosmic       EventType = "cosmic"
	EventUrban        EventType = "urban"
	EventFantasy      EventType = "fantasy"
	EventHistorical   EventType = "historical"
)

// EventTypes lists every supported event type in a stable order.
var EventTypes = []EventType{
	EventArchitecture,
	EventNature,
	EventPortrait,
	EventAbstract,
	EventCosmic,
	EventUrban,
	EventFantasy,
	EventHistorical,
}

func ParseEventType(s string) (EventType, error) {
	for _, e := range EventTypes {
		if EventType(s) == e {
			return e, nil
		}
	}
	return "", types.AppErrInvalidEventType
}
