package flowctrl

import (
	"net"
	"net/http"
)

// FlowControlHandler filters requests by client ip against the
// configured per-path white or black lists.
func FlowControlHandler(config FlowControlConfig) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(writer http.ResponseWriter, request *http.Request) {
			item := config.itemFor(request.URL.Path)
			if !allowed(item, clientIp(request)) {
				http.Error(writer, "forbidden", http.StatusForbidden)
				return
			}
			next(writer, request)
		}
	}
}

func allowed(item FlowControlConfigItem, ip string) bool {
	switch item.FlowControlType {
	case ControlTypeWhiteList:
		for _, white := range item.WhiteListIps {
			if white == ip {
				return true
			}
		}
		return false
	case ControlTypeBlackList:
		for _, black := range item.BlackListIps {
			if black == ip {
				return false
			}
		}
		return true
	}
	return true
}

func clientIp(request *http.Request) string {
	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return host
}
