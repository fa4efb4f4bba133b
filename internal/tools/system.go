package tools

import (
	"time"

	"github.com/firebase/genkit/go/ai"
)

// CurrentTimeName is the Genkit tool name for retrieving the current time.
const CurrentTimeName = "current_time"

// CurrentTimeInput defines input for the current_time tool.
type CurrentTimeInput struct {
	Timezone   string `json:"timezone,omitempty" jsonschema_description:"IANA timezone like 'UTC' or 'Asia/Shanghai'. Defaults to 'UTC'."`
	ReturnUnix *bool  `json:"return_unix,omitempty" jsonschema_description:"Include unix epoch seconds in the result. Defaults to true."`
}

// CurrentTime returns the current time in the requested timezone.
// An unknown timezone silently falls back to UTC.
func CurrentTime(_ *ai.ToolContext, input CurrentTimeInput) (map[string]any, error) {
	tzName := input.Timezone
	if tzName == "" {
		tzName = "UTC"
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		tzName = "UTC"
		loc = time.UTC
	}

	now := time.Now().In(loc)
	result := map[string]any{
		"timezone":     tzName,
		"datetime_iso": now.Format("2006-01-02T15:04:05-07:00"),
		"utc_offset":   now.Format("-0700"),
	}
	if input.ReturnUnix == nil || *input.ReturnUnix {
		result["unix_epoch"] = now.Unix()
	}
	return result, nil
}
