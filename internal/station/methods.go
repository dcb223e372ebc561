// Package station orchestrates baseflow separation for gauging stations:
// cleaning raw series, converting freeze periods to sample masks, running
// the separation pipeline per station, and batching many stations.
package station

import (
	"fmt"
	"strings"
)

// Method names a baseflow separation method from the filter bank.
type Method string

const (
	MethodUKIH     Method = "UKIH"
	MethodLocal    Method = "Local"
	MethodFixed    Method = "Fixed"
	MethodSlide    Method = "Slide"
	MethodLH       Method = "LH"
	MethodChapman  Method = "Chapman"
	MethodCM       Method = "CM"
	MethodBoughton Method = "Boughton"
	MethodFurey    Method = "Furey"
	MethodEckhardt Method = "Eckhardt"
	MethodEWMA     Method = "EWMA"
	MethodWillems  Method = "Willems"
)

// AllMethods returns every supported method in canonical order.
func AllMethods() []Method {
	return []Method{
		MethodUKIH, MethodLocal, MethodFixed, MethodSlide, MethodLH,
		MethodChapman, MethodCM, MethodBoughton, MethodFurey,
		MethodEckhardt, MethodEWMA, MethodWillems,
	}
}

// ParseMethods converts a comma-separated list ("Eckhardt,LH") or "all" into
// method values, rejecting unknown names.
func ParseMethods(s string) ([]Method, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return AllMethods(), nil
	}

	known := make(map[string]Method)
	for _, m := range AllMethods() {
		known[strings.ToLower(string(m))] = m
	}

	var methods []Method
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		m, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("unknown separation method %q", strings.TrimSpace(part))
		}
		methods = append(methods, m)
	}
	return methods, nil
}

// needsRecession reports whether the method's filter consumes the recession
// coefficient.
func needsRecession(m Method) bool {
	switch m {
	case MethodChapman, MethodCM, MethodBoughton, MethodFurey, MethodEckhardt, MethodWillems:
		return true
	}
	return false
}
