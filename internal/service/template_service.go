// internal/service/template_service.go
package service

import (
    "strings"
    "time"
)

// Message templates use double-brace tokens, with Spanish and English
// spellings accepted for the same field. Replacement is case-sensitive,
// global and runs in a fixed token order so output is deterministic even
// when a lead's own fields contain token text; unrecognized tokens are
// left verbatim.
var tokenFields = []struct {
    token string
    field func(name, phone string) string
}{
    {"{{nombre}}", func(name, _ string) string { return name }},
    {"{{name}}", func(name, _ string) string { return name }},
    {"{{telefono}}", func(_, phone string) string { return phone }},
    {"{{phone}}", func(_, phone string) string { return phone }},
}

// RenderMessage personalizes a trigger template with the lead's fields.
// It never fails; a template with no recognized tokens comes back unchanged.
func RenderMessage(template, name, phone string) string {
    result := template
    for _, t := range tokenFields {
        result = strings.ReplaceAll(result, t.token, t.field(name, phone))
    }
    return result
}

// ComputeSendTime turns a delay in hours into an absolute send time.
// nil means immediate; fractional hours are supported (0.5 = 30 minutes).
// now is injected by the caller, and the result stays in its reference
// frame (UTC in this service).
func ComputeSendTime(delayHours *float64, now time.Time) time.Time {
    if delayHours == nil {
        return now
    }
    delay := time.Duration(*delayHours * float64(time.Hour))
    return now.Add(delay)
}
