package rule

import "hue-alerts/internal/domain/model"

const (
	DefaultUsername  = "Unknown"
	DefaultInFanclub = false
)

// Parameters flattens the user object of an event into expression
// variables. username and inFanclub are always present; missing or
// mistyped values fall back to their defaults.
func Parameters(ev model.FeedEvent) map[string]interface{} {
	params := map[string]interface{}{
		"method":    ev.Method,
		"username":  DefaultUsername,
		"inFanclub": DefaultInFanclub,
	}

	user, _ := ev.Object["user"].(map[string]any)
	for k, v := range user {
		switch val := v.(type) {
		case string, bool, float64:
			params[k] = val
		case int:
			params[k] = float64(val)
		}
	}

	if name, ok := params["username"].(string); !ok || name == "" {
		params["username"] = DefaultUsername
	}
	if _, ok := params["inFanclub"].(bool); !ok {
		params["inFanclub"] = DefaultInFanclub
	}
	return params
}
