// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/scrubdeck/scrubdeck/color"
	"github.com/scrubdeck/scrubdeck/constant"
	"github.com/scrubdeck/scrubdeck/key"
	"github.com/scrubdeck/scrubdeck/resume"
	"github.com/scrubdeck/scrubdeck/seek"
	"github.com/scrubdeck/scrubdeck/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Scrubdeck + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

// FailurePolicies lists the accepted values of the seek failure policy setting.
var FailurePolicies = seek.FailurePolicyNames()

// ResumeBackends lists the accepted values of the resume backend setting.
var ResumeBackends = resume.Backends

func init() {
	// register validates and adds a new configuration field to the global registry.
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.PlayerBinary, "mpv", "Path or name of the mpv executable used as the media engine")
	register(key.PlayerAutoplay, true, "Start playing as soon as the media is ready")
	register(key.PlayerResumeThreshold, 1.0, "Resume positions at or below this many seconds start from the beginning")
	register(key.PlayerPeriodicInterval, 1000, "Interval between periodic position updates, in milliseconds")
	register(key.PlayerDefaultVolume, 1.0, "Initial volume, from 0 to 1")
	register(key.PlayerDefaultBrightness, 0.5, "Initial brightness reported to the UI, from 0 to 1")
	register(key.ScrubSensitivity, 99.0, "Drag sensitivity divisor.\nThe bigger the number, the less sensitive horizontal scrubbing is")
	register(key.ScrubVerticalScale, 10000.0, "Divisor applied to vertical drags for volume and brightness")
	register(key.ScrubPreviewRate, 8.0, "Maximum preview seeks per second while dragging.\n0 disables previews")
	register(key.ScrubStepSeconds, 5.0, "Seconds skipped by a single seek key press")
	register(key.ScrubDeadZone, 0.1, "Fraction of the view height at the bottom where vertical drags are ignored")
	register(key.ProgressDiscontinuityEpsilon, 0.5, "Backward position jumps larger than this many seconds are reported as discontinuities")
	register(key.ProgressStallTicks, 3, "Consecutive non-advancing updates while playing before entering buffering.\n0 disables stall detection")
	register(key.SeekFailurePolicy, seek.FailRemoteOnly.String(), "Which failed seeks move the player into the failed state.\nAvailable options are: remote-only, always, never")
	register(key.ResumeEnable, true, "Remember playback positions between sessions")
	register(key.ResumeBackend, resume.BackendGache, "Storage used for playback positions.\nAvailable options are: gache, sqlite, memory")
	register(key.ResumeSaveInterval, 10, "Seconds between resume position saves during playback")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
