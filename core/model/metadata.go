package model

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-openapi/swag"
	"github.com/pkg/errors"
	"k8s.io/kube-openapi/pkg/validation/validate"
)

// NftMetadata is the display metadata stored alongside an NFT and pushed
// to the canister on mint and evolution.
type NftMetadata struct {
	Image       string `json:"image"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Attributes  string `json:"attributes"`
}

func (m *NftMetadata) Validate() error {
	var res []error
	if err := validate.Required("name", "body", m.Name); err != nil {
		res = append(res, err)
	}
	if err := validate.Required("image", "body", m.Image); err != nil {
		res = append(res, err)
	}
	if err := m.validateAttributes(); err != nil {
		res = append(res, err)
	}
	if len(res) > 0 {
		err := fmt.Sprintln(res)
		return errors.New(err)
	}
	return nil
}

func (m *NftMetadata) validateAttributes() error {
	if swag.IsZero(m.Attributes) { // not required
		return nil
	}
	var res []error
	var result []*interface{}
	err := json.Unmarshal([]byte(m.Attributes), &result)
	if err != nil {
		return err
	}
	if swag.IsZero(result) { // not required
		return nil
	}
	for i := 0; i < len(result); i++ {
		value := result[i]
		if swag.IsZero(value) { // not required
			continue
		}
		att, err := json.Marshal(value)
		if err != nil {
			res = append(res, err)
			continue
		}
		anyMap := make(map[string]interface{}, 0)
		if err := json.Unmarshal(att, &anyMap); err != nil {
			res = append(res, err)
			continue
		}
		v := anyMap["display_type"]
		if v == nil {
			res = validatePropertiesAttribute(att, res)
			continue
		}
		kind := reflect.ValueOf(v)
		if reflect.String != kind.Kind() {
			res = append(res, errors.New("display_type must String "))
			continue
		}
		displayType := v.(string)
		switch strings.ToLower(displayType) {
		case AttributesProperties:
			res = validatePropertiesAttribute(att, res)
		case AttributesLevels:
			res = validateRangedAttribute(att, res)
		case AttributesStats:
			res = validateRangedAttribute(att, res)
		}
	}
	if len(res) > 0 {
		err := fmt.Sprintln(res)
		return errors.New(err)
	}
	return nil
}

func validatePropertiesAttribute(att []byte, res []error) []error {
	var propertiesAttribute PropertiesAttribute
	err := json.Unmarshal(att, &propertiesAttribute)
	if err != nil {
		res = append(res, err)
		return res
	}
	err = propertiesAttribute.Validate()
	if err != nil {
		res = append(res, err)
	}
	return res
}

func validateRangedAttribute(att []byte, res []error) []error {
	var attribute Attribute
	err := json.Unmarshal(att, &attribute)
	if err != nil {
		res = append(res, err)
		return res
	}
	err = attribute.Validate()
	if err != nil {
		res = append(res, err)
	}
	return res
}
