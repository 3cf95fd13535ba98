package routing

import "strings"

var idReplacer = strings.NewReplacer(":", "_", "@", "_", ".", "_")

// SafeID maps ':', '@' and '.' to '_' so the result can be used as a
// graph element id. Distinct inputs may collide.
func SafeID(s string) string {
	return idReplacer.Replace(s)
}

// EdgeID is the deterministic id of the edge from source to target.
func EdgeID(source, target string) string {
	return SafeID("edge_" + source + "_" + target)
}

// FormatPhone renders a North American number as "(NPA) NXX-XXXX". Inputs
// that are not 10 digits (or 11 with a leading 1) are returned unchanged.
func FormatPhone(number string) string {
	digits := strings.Map(func(r rune) rune {
		if isDigit(r) {
			return r
		}
		return -1
	}, number)

	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) == 10 {
		return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
	}
	return number
}

// PortalLink returns the portal deep link for a node of the given kind, or
// "" when the kind has none.
func PortalLink(domain string, kind Kind, name string) string {
	switch kind {
	case KindIngress:
		return "/portal/inventory/index/phonenumbers"
	case KindUser:
		return "/portal/answerrules/index/" + name + "@" + domain
	case KindCallQueue:
		return "/portal/callqueues"
	case KindAutoAttendant:
		if owner, prompt, ok := strings.Cut(name, ":"); ok {
			return "/portal/attendants/edit/" + owner + "@" + domain + "/" + prompt
		}
		return "/portal/attendants"
	case KindVoicemail:
		return "/portal/users/edit/voicemail/" + strings.ReplaceAll(name, "vmail_", "") + "@" + domain
	case KindConference:
		return "/portal/conferences"
	}
	return ""
}

// Colors is the background color per kind.
var Colors = map[Kind]string{
	KindIngress:       "#E0E0E0",
	KindUser:          "#ADD8E6",
	KindAutoAttendant: "#FFD700",
	KindCallQueue:     "#FFA500",
	KindVoicemail:     "#A9A9A9",
	KindOffnet:        "#90EE90",
	KindHangup:        "#FF6347",
	KindOther:         "#D3D3D3",
	KindDirectory:     "#DA70D6",
	KindConference:    "#EE82EE",
	KindDevice:        "#D8BFD8",
}

// lastDigitRun returns the last maximal run of ASCII digits in s.
func lastDigitRun(s string) (string, bool) {
	end := strings.LastIndexFunc(s, isDigit)
	if end < 0 {
		return "", false
	}
	start := end
	for start > 0 && isDigit(rune(s[start-1])) {
		start--
	}
	return s[start : end+1], true
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
