package chromium

import (
	"encoding/json"
	"fmt"
	"strings"
)

// automationMask builds the script installed on every new document to hide
// the navigator fields that give away a driven browser.
func automationMask(lang string, mobile bool) string {
	platform := "MacIntel"
	if mobile {
		platform = "iPhone"
	}
	languages, _ := json.Marshal(acceptLanguages(lang))

	return fmt.Sprintf(`(() => {
	Object.defineProperty(navigator, 'webdriver', {get: () => undefined});
	Object.defineProperty(navigator, 'languages', {get: () => %s});
	Object.defineProperty(navigator, 'platform', {get: () => %q});
})();`, languages, platform)
}

// acceptLanguages expands "ru-RU" to ru-RU, ru, en-US, the list a regional
// desktop browser reports.
func acceptLanguages(lang string) []string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		lang = "en-US"
	}

	out := []string{lang}
	if base, _, ok := strings.Cut(lang, "-"); ok && base != "" {
		out = append(out, base)
	}
	if !strings.EqualFold(lang, "en-US") {
		out = append(out, "en-US")
	}
	return out
}
