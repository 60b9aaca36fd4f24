package model

import "strings"

// ClassMap maps common Android widget classes to compact codes used in
// path breadcrumbs.
var ClassMap = map[string]string{
	"android.widget.Button":         "btn",
	"android.widget.ImageButton":    "btn",
	"android.widget.TextView":       "txt",
	"android.widget.ImageView":      "img",
	"android.widget.EditText":       "input",
	"android.widget.CheckBox":       "chk",
	"android.widget.Switch":         "toggle",
	"android.widget.RadioButton":    "radio",
	"android.widget.FrameLayout":    "frame",
	"android.widget.LinearLayout":   "linear",
	"android.widget.RelativeLayout": "relative",
	"android.widget.ScrollView":     "scroll",
	"android.widget.ListView":       "list",
	"android.webkit.WebView":        "web",
	"android.view.View":             "view",
	"android.view.ViewGroup":        "group",
}

// ShortClass converts a fully qualified widget class to a compact code.
// Unknown classes fall back to their simple name.
func ShortClass(class string) string {
	if short, ok := ClassMap[class]; ok {
		return short
	}
	if i := strings.LastIndex(class, "."); i >= 0 {
		return class[i+1:]
	}
	if class == "" {
		return "other"
	}
	return class
}
