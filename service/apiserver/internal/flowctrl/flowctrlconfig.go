package flowctrl

import "github.com/pkg/errors"

const (
	ControlTypeWhiteList = "ControlledByWhitelist"
	ControlTypeBlackList = "ControlledByBlacklist"
)

type FlowControlConfigItem struct {
	FlowControlType string
	WhiteListIps    []string `json:",optional"`
	BlackListIps    []string `json:",optional"`
}

type FlowControlConfig struct {
	DefaultFlowControlConfig FlowControlConfigItem            `json:",optional"`
	PathFlowControlConfigMap map[string]FlowControlConfigItem `json:",optional"`
}

func (c *FlowControlConfig) Validate() error {
	check := func(item FlowControlConfigItem) error {
		switch item.FlowControlType {
		case "", ControlTypeWhiteList, ControlTypeBlackList:
			return nil
		}
		return errors.Errorf("unknown flow control type %q", item.FlowControlType)
	}
	if err := check(c.DefaultFlowControlConfig); err != nil {
		return err
	}
	for path, item := range c.PathFlowControlConfigMap {
		if err := check(item); err != nil {
			return errors.Wrapf(err, "path %s", path)
		}
	}
	return nil
}

func (c *FlowControlConfig) itemFor(path string) FlowControlConfigItem {
	if item, ok := c.PathFlowControlConfigMap[path]; ok {
		return item
	}
	return c.DefaultFlowControlConfig
}
