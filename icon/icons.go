package icon

import "github.com/scrubdeck/scrubdeck/status"

// Icon identifies a symbol in the registry.
type Icon int

const (
	Fail Icon = iota + 1
	Success
	Question
	Mark
	Arrow
	Progress

	Unknown
	Ready
	Buffering
	Playing
	Paused
	Failed

	Seek
	Volume
	Brightness
	Replay
)

var icons = map[Icon]*iconDef{
	Fail: {
		emoji:   "💀",
		nerd:    "",
		plain:   "X",
		kaomoji: "(╯°□°)╯︵ ┻━┻",
		squares: "🟥",
	},
	Success: {
		emoji:   "🎉",
		nerd:    "",
		plain:   "Success",
		kaomoji: "(ᵔᴥᵔ)",
		squares: "🟩",
	},
	Question: {
		emoji:   "🤨",
		nerd:    "",
		plain:   "?",
		kaomoji: "(？_？)",
		squares: "🟦",
	},
	Mark: {
		emoji:   "📌",
		nerd:    "",
		plain:   "*",
		kaomoji: "(＾▽＾)",
		squares: "🟨",
	},
	Arrow: {
		emoji:   "👉",
		nerd:    "",
		plain:   ">",
		kaomoji: "(☞ﾟヮﾟ)☞",
		squares: "▶",
	},
	Progress: {
		emoji:   "👾",
		nerd:    "",
		plain:   "@",
		kaomoji: "(・_・ヾ",
		squares: "🟪",
	},
	Unknown: {
		emoji:   "❔",
		nerd:    "",
		plain:   "-",
		kaomoji: "(・・?)",
		squares: "⬜",
	},
	Ready: {
		emoji:   "🎬",
		nerd:    "",
		plain:   "=",
		kaomoji: "(•̀ᴗ•́)و",
		squares: "🟦",
	},
	Buffering: {
		emoji:   "⏳",
		nerd:    "",
		plain:   "~",
		kaomoji: "(´-ω-`)",
		squares: "🟨",
	},
	Playing: {
		emoji:   "▶️",
		nerd:    "",
		plain:   ">",
		kaomoji: "ヽ(>∀<☆)ノ",
		squares: "🟩",
	},
	Paused: {
		emoji:   "⏸️",
		nerd:    "",
		plain:   "||",
		kaomoji: "(￣o￣) zzZ",
		squares: "🟧",
	},
	Failed: {
		emoji:   "⛔",
		nerd:    "",
		plain:   "!",
		kaomoji: "(×_×)",
		squares: "🟥",
	},
	Seek: {
		emoji:   "⏩",
		nerd:    "",
		plain:   ">>",
		kaomoji: "≡┏(ﾟДﾟ)┛",
		squares: "🟪",
	},
	Volume: {
		emoji:   "🔊",
		nerd:    "",
		plain:   "vol",
		kaomoji: "♪(´▽｀)",
		squares: "🟫",
	},
	Brightness: {
		emoji:   "🔆",
		nerd:    "",
		plain:   "bri",
		kaomoji: "☆(ゝω・)",
		squares: "🟨",
	},
	Replay: {
		emoji:   "🔁",
		nerd:    "",
		plain:   "<<",
		kaomoji: "(ง'̀-'́)ง",
		squares: "🟦",
	},
}

var byStatus = map[status.Status]Icon{
	status.Unknown:     Unknown,
	status.ReadyToPlay: Ready,
	status.Buffering:   Buffering,
	status.Playing:     Playing,
	status.Paused:      Paused,
	status.Failed:      Failed,
}

// ForStatus returns the icon shown next to a player status.
func ForStatus(s status.Status) Icon {
	if i, ok := byStatus[s]; ok {
		return i
	}
	return Unknown
}
