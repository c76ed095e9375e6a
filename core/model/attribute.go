package model

import (
	"fmt"

	"github.com/pkg/errors"
	"k8s.io/kube-openapi/pkg/validation/validate"
)

const (
	AttributesProperties = "properties"
	AttributesLevels     = "levels"
	AttributesStats      = "stats"
)

type Attribute struct {

	// displayType
	// Example: levels or stats
	// Required: true
	DisplayType *string `json:"display_type"`

	// name
	// Example: luminosity
	// Required: true
	Name *string `json:"trait_type"`

	// value
	// Example: 20
	// Required: true
	Value *int64 `json:"value"`

	// maximum value
	// Example: 100
	// Required: true
	MaxValue *int64 `json:"max_value"`
}

func (a *Attribute) Validate() error {
	var res []error

	if err := validate.Required("display_type", "attributes", a.DisplayType); err != nil {
		res = append(res, err)
	}

	if err := validate.Required("trait_type", "attributes", a.Name); err != nil {
		res = append(res, err)
	}

	if err := validate.Required("value", "attributes", a.Value); err != nil {
		res = append(res, err)
	}

	if err := validate.Required("max_value", "attributes", a.MaxValue); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		err := fmt.Sprintln(res)
		return errors.New(err)
	}
	return nil
}

type PropertiesAttribute struct {

	// name
	// Example: artist
	// Required: true
	Name *string `json:"trait_type"`

	// value
	// Example: Van Gogh
	// Required: true
	Value interface{} `json:"value"`
}

func (a *PropertiesAttribute) Validate() error {
	var res []error

	if err := validate.Required("trait_type", "attributes", a.Name); err != nil {
		res = append(res, err)
	}

	if err := validate.Required("value", "attributes", a.Value); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		err := fmt.Sprintln(res)
		return errors.New(err)
	}
	return nil
}
